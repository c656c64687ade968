package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/campuslink/internal/client/api"
	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
	"github.com/dmitrijs2005/campuslink/internal/common"
	"github.com/dmitrijs2005/campuslink/internal/cryptox"
	"github.com/dmitrijs2005/campuslink/internal/logging"

	_ "modernc.org/sqlite"
)

var testKey = cryptox.DeriveSealKey([]byte("svc-secret"), []byte("svc-salt"))

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func setupStore(t *testing.T) *session.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
DELETE FROM metadata;
`)
	require.NoError(t, err)

	return session.New(metadata.NewSQLiteRepository(db), testKey, testLogger())
}

// ---- fake API client ----

type fakeClient struct {
	mu sync.Mutex

	loginRes *api.AuthResult
	loginErr error
	// loginBlock, when set, makes Login wait until the channel closes.
	loginBlock chan struct{}

	registerRes *api.AuthResult
	registerErr error

	logoutErr   error
	logoutCalls int

	meRes *models.User
	meErr error

	settingsErr   error
	settingsCalls int
	lastSettings  models.Settings

	token string

	lastLoginEmail string
	lastRegister   models.NewUser
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	if f.loginBlock != nil {
		<-f.loginBlock
	}
	f.mu.Lock()
	f.lastLoginEmail = email
	f.mu.Unlock()
	return f.loginRes, f.loginErr
}

func (f *fakeClient) Register(ctx context.Context, nu models.NewUser) (*api.AuthResult, error) {
	f.mu.Lock()
	f.lastRegister = nu
	f.mu.Unlock()
	return f.registerRes, f.registerErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	return f.meRes, f.meErr
}

func (f *fakeClient) UpdateSettings(ctx context.Context, s models.Settings) error {
	f.mu.Lock()
	f.settingsCalls++
	f.lastSettings = s
	f.mu.Unlock()
	return f.settingsErr
}

func (f *fakeClient) Courses(ctx context.Context) ([]models.Course, error)         { return nil, nil }
func (f *fakeClient) Assignments(ctx context.Context) ([]models.Assignment, error) { return nil, nil }
func (f *fakeClient) Grades(ctx context.Context) ([]models.Grade, error)           { return nil, nil }
func (f *fakeClient) Materials(ctx context.Context) ([]models.Material, error)     { return nil, nil }
func (f *fakeClient) UnreadCount(ctx context.Context) (int, error)                 { return 0, nil }

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func studentUser() models.User {
	return models.User{
		ID:       "u1",
		FullName: "Alice Moraru",
		Email:    "alice@campus.edu",
		Role:     models.RoleStudent,
		Campus:   "North",
	}
}

// ---- Login ----

func TestLogin_Success_Transitions(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{loginRes: &api.AuthResult{User: studentUser(), Token: "tok-1"}}
	svc := NewAuthService(fc, store, testLogger())

	before := store.State()
	require.False(t, before.IsAuthenticated)

	st, err := svc.Login(context.Background(), "alice@campus.edu", "s3cret")
	require.NoError(t, err)

	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@campus.edu", st.User.Email)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, "tok-1", store.Token())
	assert.Equal(t, "tok-1", fc.currentToken(), "transport must carry the new token")
}

func TestLogin_Failure_SetsErrorKeepsUser(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{loginErr: &api.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Login(context.Background(), "alice@campus.edu", "wrong")
	require.Error(t, err)

	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Equal(t, "Invalid credentials", st.Err)
	assert.False(t, st.Loading)
}

func TestLogin_Failure_FallbackMessage(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{loginErr: errors.New("connection refused")}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Login(context.Background(), "a@b.c", "p")
	require.Error(t, err)
	assert.Equal(t, "Login failed", st.Err)
}

func TestLogin_MergePolicy_KeepsStoredProfileImage(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// A previous run persisted the same user with a client-set avatar.
	prior := studentUser()
	prior.ProfileImage = "a.png"
	store.SetAuthenticated(ctx, prior, "old-token")

	// Fresh login response for the same email carries no image.
	fresh := studentUser()
	fresh.ProfileImage = ""
	fc := &fakeClient{loginRes: &api.AuthResult{User: fresh, Token: "tok-2"}}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Login(ctx, "alice@campus.edu", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, st.User)
	assert.Equal(t, "a.png", st.User.ProfileImage)
}

func TestLogin_MergePolicy_DifferentEmailNotMerged(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	prior := studentUser()
	prior.ProfileImage = "a.png"
	store.SetAuthenticated(ctx, prior, "old-token")

	other := models.User{ID: "u2", Email: "bob@campus.edu", Role: models.RoleStudent}
	fc := &fakeClient{loginRes: &api.AuthResult{User: other, Token: "tok-3"}}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Login(ctx, "bob@campus.edu", "pw")
	require.NoError(t, err)
	assert.Empty(t, st.User.ProfileImage)
}

func TestLogin_ServerImageWins(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	prior := studentUser()
	prior.ProfileImage = "a.png"
	store.SetAuthenticated(ctx, prior, "old-token")

	fresh := studentUser()
	fresh.ProfileImage = "new.png"
	fc := &fakeClient{loginRes: &api.AuthResult{User: fresh, Token: "tok-4"}}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Login(ctx, "alice@campus.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "new.png", st.User.ProfileImage)
}

func TestLogin_SingleFlight(t *testing.T) {
	store := setupStore(t)
	block := make(chan struct{})
	fc := &fakeClient{
		loginRes:   &api.AuthResult{User: studentUser(), Token: "tok"},
		loginBlock: block,
	}
	svc := NewAuthService(fc, store, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(context.Background(), "alice@campus.edu", "pw")
		done <- err
	}()

	// Wait for the first call to enter the gateway.
	require.Eventually(t, func() bool {
		return store.State().Loading
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Login(context.Background(), "alice@campus.edu", "pw")
	require.ErrorIs(t, err, common.ErrOperationInFlight)

	close(block)
	require.NoError(t, <-done)
	assert.True(t, store.State().IsAuthenticated)
}

// ---- Register ----

func TestRegister_Success_BootstrapsDefaultSettings(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{registerRes: &api.AuthResult{User: studentUser(), Token: "tok-r"}}
	svc := NewAuthService(fc, store, testLogger())

	nu := models.NewUser{
		FullName: "Alice Moraru",
		Email:    "alice@campus.edu",
		Password: "s3cret",
		Role:     models.RoleStudent,
		Campus:   "North",
	}

	st, err := svc.Register(context.Background(), nu)
	require.NoError(t, err)
	assert.True(t, st.IsAuthenticated)

	assert.Equal(t, 1, fc.settingsCalls)
	assert.Equal(t, "dark", fc.lastSettings.Theme)
	assert.Equal(t, "en", fc.lastSettings.Language)
	assert.Equal(t, "public", fc.lastSettings.ProfileVisibility)
}

func TestRegister_SettingsFailureSwallowed(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{
		registerRes: &api.AuthResult{User: studentUser(), Token: "tok-r"},
		settingsErr: errors.New("settings endpoint down"),
	}
	svc := NewAuthService(fc, store, testLogger())

	nu := models.NewUser{
		FullName: "Alice Moraru",
		Email:    "alice@campus.edu",
		Password: "s3cret",
		Role:     models.RoleStudent,
	}

	st, err := svc.Register(context.Background(), nu)
	require.NoError(t, err, "settings bootstrap failure must not fail registration")
	assert.True(t, st.IsAuthenticated)
	assert.Empty(t, st.Err)
}

func TestRegister_ValidationFailure_NoNetworkCall(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, store, testLogger())

	st, err := svc.Register(context.Background(), models.NewUser{Email: "x@y.z"})
	require.Error(t, err)
	assert.False(t, st.IsAuthenticated)
	assert.NotEmpty(t, st.Err)
	assert.Empty(t, fc.lastRegister.Email, "invalid form must not reach the API")
}

func TestRegister_ServerFailure(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{registerErr: &api.Error{Status: http.StatusConflict, Message: "Email already taken"}}
	svc := NewAuthService(fc, store, testLogger())

	nu := models.NewUser{
		FullName: "Alice Moraru",
		Email:    "alice@campus.edu",
		Password: "s3cret",
		Role:     models.RoleStudent,
	}

	st, err := svc.Register(context.Background(), nu)
	require.Error(t, err)
	assert.Equal(t, "Email already taken", st.Err)
	assert.False(t, st.IsAuthenticated)
}

// ---- Logout ----

func TestLogout_AlwaysClearsLocally(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "server ok"},
		{name: "server error", logoutErr: errors.New("503")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := setupStore(t)
			ctx := context.Background()
			store.SetAuthenticated(ctx, studentUser(), "tok")

			fc := &fakeClient{logoutErr: tc.logoutErr}
			fc.SetToken("tok")
			svc := NewAuthService(fc, store, testLogger())

			require.NoError(t, svc.Logout(ctx))

			st := store.State()
			assert.False(t, st.IsAuthenticated)
			assert.Nil(t, st.User)
			assert.Empty(t, st.Err)
			assert.Empty(t, store.Token())
			assert.Empty(t, fc.currentToken())
			assert.Equal(t, 1, fc.logoutCalls)
		})
	}
}

// ---- Revalidate ----

func TestRevalidate_ServerUserWins(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stale := studentUser()
	stale.FullName = "Old Name"
	store.SetAuthenticated(ctx, stale, "tok-persisted")

	// Simulate a restart: fresh store sees only the persisted copy.
	current := studentUser()
	current.FullName = "Renamed By Registrar"
	fc := &fakeClient{meRes: &current}
	svc := NewAuthService(fc, store, testLogger())

	require.NoError(t, svc.Revalidate(ctx))

	st := store.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "Renamed By Registrar", st.User.FullName)
	assert.Equal(t, "tok-persisted", fc.currentToken())
}

func TestRevalidate_NetworkFailure_FallsBackToPersisted(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	store.SetAuthenticated(ctx, studentUser(), "opaque-token")

	fc := &fakeClient{meErr: common.ErrUnavailable}
	svc := NewAuthService(fc, store, testLogger())

	require.NoError(t, svc.Revalidate(ctx))

	st := store.State()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "alice@campus.edu", st.User.Email)
}

func TestRevalidate_NoPersistedSession(t *testing.T) {
	store := setupStore(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, store, testLogger())

	err := svc.Revalidate(context.Background())
	require.ErrorIs(t, err, common.ErrNoPersistedSession)
	assert.False(t, store.State().IsAuthenticated)
}

func TestRevalidate_ServerRejectsToken_Resets(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// Opaque token, so client-side expiry inspection cannot decide; the
	// server's 401 is the definitive verdict.
	store.SetAuthenticated(ctx, studentUser(), "opaque-revoked-token")

	fc := &fakeClient{meErr: &api.Error{Status: http.StatusUnauthorized, Message: "session revoked"}}
	svc := NewAuthService(fc, store, testLogger())

	err := svc.Revalidate(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	st := store.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, fc.currentToken())

	// The persisted pair is gone: the next startup starts signed out.
	_, _, err = store.LoadPersisted(ctx)
	require.ErrorIs(t, err, common.ErrNoPersistedSession)
}

func TestRevalidate_ExpiredJWT_Resets(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	store.SetAuthenticated(ctx, studentUser(), expired)

	fc := &fakeClient{meErr: &api.Error{Status: http.StatusUnauthorized, Message: "token expired"}}
	svc := NewAuthService(fc, store, testLogger())

	err = svc.Revalidate(ctx)
	require.ErrorIs(t, err, common.ErrTokenExpired)

	st := store.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
}
