// Package services contains the application services of the campuslink
// client. This file defines the auth service: login, registration, logout,
// and startup revalidation of a persisted session.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/campuslink/internal/client/api"
	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
	"github.com/dmitrijs2005/campuslink/internal/common"
	"github.com/dmitrijs2005/campuslink/internal/jwtx"
	"github.com/dmitrijs2005/campuslink/internal/logging"
)

// AuthService translates user intents into API calls and session store
// updates.
//
// Contract:
//   - Login / Register: authenticate and populate the session store. They
//     never navigate; callers key navigation off the resulting user role.
//   - Logout: best-effort server call, unconditional local reset.
//   - Revalidate: startup check of the persisted (token, user) pair.
//   - Overlapping calls of the same operation fail fast with
//     common.ErrOperationInFlight instead of racing on the store.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Register(ctx context.Context, nu models.NewUser) (session.Session, error)
	Logout(ctx context.Context) error
	Revalidate(ctx context.Context) error
}

type authService struct {
	client api.Client
	store  *session.Store
	log    logging.Logger

	// now is a seam for token-expiry checks in tests.
	now func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewAuthService binds the auth flows to an API client and a session store.
func NewAuthService(client api.Client, store *session.Store, log logging.Logger) AuthService {
	return &authService{
		client:   client,
		store:    store,
		log:      log.With("component", "auth"),
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// begin marks op as in flight. The returned release func must be deferred.
func (a *authService) begin(op string) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.inflight[op]; busy {
		return nil, fmt.Errorf("%w: %s", common.ErrOperationInFlight, op)
	}
	a.inflight[op] = struct{}{}
	return func() {
		a.mu.Lock()
		delete(a.inflight, op)
		a.mu.Unlock()
	}, nil
}

// Login authenticates with the backend. On success the session becomes
// authenticated and the (token, user) pair is persisted; on failure the
// session carries the normalized error message and the previous
// authentication state is left untouched.
//
// Merge-on-login: when a previously persisted user with the same email had
// a profile image and the fresh payload lacks one, the old image is kept.
// This stops a stale server response from blanking a client-side avatar.
func (a *authService) Login(ctx context.Context, email, password string) (session.Session, error) {
	release, err := a.begin("login")
	if err != nil {
		return a.store.State(), err
	}
	defer release()

	a.store.SetLoading(true)

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		a.store.SetError(api.ErrorMessage(err, "Login failed"))
		return a.store.State(), err
	}

	user := res.User
	if user.ProfileImage == "" {
		if prior, _, perr := a.store.LoadPersisted(ctx); perr == nil &&
			prior.Email == user.Email && prior.ProfileImage != "" {
			user.ProfileImage = prior.ProfileImage
		}
	}

	a.client.SetToken(res.Token)
	a.store.SetAuthenticated(ctx, user, res.Token)
	return a.store.State(), nil
}

// Register creates an account and signs the user in. After a successful
// registration it bootstraps a default server-side settings record; that
// call is best-effort and its failure never fails the registration.
func (a *authService) Register(ctx context.Context, nu models.NewUser) (session.Session, error) {
	release, err := a.begin("register")
	if err != nil {
		return a.store.State(), err
	}
	defer release()

	if err := nu.Validate(); err != nil {
		a.store.SetError(err.Error())
		return a.store.State(), err
	}

	a.store.SetLoading(true)

	res, err := a.client.Register(ctx, nu)
	if err != nil {
		a.store.SetError(api.ErrorMessage(err, "Registration failed"))
		return a.store.State(), err
	}

	a.client.SetToken(res.Token)
	a.store.SetAuthenticated(ctx, res.User, res.Token)

	if err := a.client.UpdateSettings(ctx, models.DefaultSettings()); err != nil {
		a.log.Warn(ctx, "default settings bootstrap failed", "error", err)
	}

	return a.store.State(), nil
}

// Logout tears the session down. The server call is best-effort; the local
// session always resets, so logout cannot fail from the user's point of
// view.
func (a *authService) Logout(ctx context.Context) error {
	release, err := a.begin("logout")
	if err != nil {
		return err
	}
	defer release()

	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}

	a.client.SetToken("")
	a.store.Reset(ctx)
	return nil
}

// Revalidate restores a persisted session at startup.
//
// The server's user record wins when the who-am-I call succeeds. When it
// fails, the stale persisted user is trusted instead of forcing a logout —
// an availability-over-freshness tradeoff. Three cases force a reset
// instead: an unparsable persisted record, a definitive rejection of the
// token by the server (401/403), and a bearer token that is a JWT already
// past its expiry. Only transient failures fall back to the stale session.
func (a *authService) Revalidate(ctx context.Context) error {
	release, err := a.begin("revalidate")
	if err != nil {
		return err
	}
	defer release()

	user, token, err := a.store.LoadPersisted(ctx)
	if err != nil {
		if errors.Is(err, common.ErrPersistedDataCorrupt) {
			a.log.Warn(ctx, "persisted session unreadable, resetting", "error", err)
			a.store.Reset(ctx)
		}
		return err
	}

	a.client.SetToken(token)

	fresh, err := a.client.Me(ctx)
	if err == nil {
		a.store.SetAuthenticated(ctx, *fresh, token)
		return nil
	}

	if jwtx.IsExpired(token, a.now()) {
		a.log.Info(ctx, "persisted token expired, resetting session")
		a.client.SetToken("")
		a.store.Reset(ctx)
		return fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
	}

	if errors.Is(err, common.ErrUnauthorized) {
		a.log.Info(ctx, "server rejected persisted session, resetting")
		a.client.SetToken("")
		a.store.Reset(ctx)
		return fmt.Errorf("persisted session rejected: %w", err)
	}

	a.log.Warn(ctx, "revalidation failed, falling back to persisted session", "error", err)
	a.store.SetAuthenticated(ctx, user, token)
	return nil
}
