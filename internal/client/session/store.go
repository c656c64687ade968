package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campuslink/internal/common"
	"github.com/dmitrijs2005/campuslink/internal/cryptox"
	"github.com/dmitrijs2005/campuslink/internal/logging"
)

// Session is the client-side authentication state. The zero value is the
// initial, signed-out state.
type Session struct {
	IsAuthenticated bool
	User            *models.User
	Loading         bool
	Err             string
}

// Store owns the Session and its durable copy. All methods are safe for
// concurrent use; each mutator swaps the full state value under the lock.
//
// Persistence failures never block a state transition: the in-memory
// session changes first and storage errors are only logged. Logout in
// particular must always succeed locally.
type Store struct {
	mu    sync.RWMutex
	cur   Session
	token string

	repo    metadata.Repository
	sealKey []byte
	log     logging.Logger

	subsMu sync.Mutex
	subs   []chan Session
}

// New creates a Store in the initial state. The seal key protects the
// persisted (token, user) pair at rest.
func New(repo metadata.Repository, sealKey []byte, log logging.Logger) *Store {
	return &Store{repo: repo, sealKey: sealKey, log: log.With("component", "session")}
}

// State returns a copy of the current session. The embedded user is copied
// too, so callers can never mutate store-owned state.
func (s *Store) State() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	snap := s.cur
	if s.cur.User != nil {
		u := *s.cur.User
		snap.User = &u
	}
	return snap
}

// Token returns the current bearer token ("" when signed out).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetAuthenticated replaces the session with an authenticated state and
// persists the (token, user) pair.
func (s *Store) SetAuthenticated(ctx context.Context, user models.User, token string) {
	s.mu.Lock()
	u := user
	s.cur = Session{IsAuthenticated: true, User: &u, Loading: false, Err: ""}
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, user, token)
	s.notify(snap)
}

// SetError records a failure message and clears the loading flag. The
// authentication state and user are left untouched, so a failed re-login
// does not kick out an already authenticated user.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.cur = Session{
		IsAuthenticated: s.cur.IsAuthenticated,
		User:            s.cur.User,
		Loading:         false,
		Err:             msg,
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetLoading toggles the in-flight flag. Turning loading on clears any
// previous error, matching the "cleared on next attempt" rule.
func (s *Store) SetLoading(on bool) {
	s.mu.Lock()
	next := Session{
		IsAuthenticated: s.cur.IsAuthenticated,
		User:            s.cur.User,
		Loading:         on,
		Err:             s.cur.Err,
	}
	if on {
		next.Err = ""
	}
	s.cur = next
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// PatchUser merges profile fields into the current user and re-persists the
// merged record. It is a silent no-op when nobody is signed in.
func (s *Store) PatchUser(ctx context.Context, patch models.UserPatch) {
	s.mu.Lock()
	if s.cur.User == nil {
		s.mu.Unlock()
		return
	}
	merged := s.cur.User.Merge(patch)
	s.cur = Session{IsAuthenticated: true, User: &merged, Loading: s.cur.Loading, Err: s.cur.Err}
	token := s.token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, merged, token)
	s.notify(snap)
}

// Reset restores the initial state and removes the persisted (token, user)
// pair. Preferences such as theme and language survive a sign-out. The
// local state always clears, even if the storage wipe fails.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.cur = Session{}
	s.token = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, key := range []string{metadata.KeyToken, metadata.KeyUser} {
		if err := s.repo.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to remove persisted session key", "key", key, "error", err)
		}
	}
	s.notify(snap)
}

// Subscribe returns a channel delivering session snapshots after every
// mutation. The channel holds only the latest snapshot: a slow consumer
// sees the newest state, not every intermediate one.
func (s *Store) Subscribe() <-chan Session {
	ch := make(chan Session, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Store) notify(snap Session) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		// Latest-wins: drop the stale snapshot if the buffer is full.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) persist(ctx context.Context, user models.User, token string) {
	sealedUser, err := cryptox.SealValue(user, s.sealKey)
	if err != nil {
		s.log.Warn(ctx, "failed to seal user record", "error", err)
		return
	}
	sealedToken, err := cryptox.SealValue(token, s.sealKey)
	if err != nil {
		s.log.Warn(ctx, "failed to seal token", "error", err)
		return
	}

	// One transaction for both halves: durable storage must never hold a
	// token from one authentication next to a user record from another.
	err = s.repo.SetMany(ctx, map[string][]byte{
		metadata.KeyUser:  sealedUser,
		metadata.KeyToken: sealedToken,
	})
	if err != nil {
		s.log.Warn(ctx, "failed to persist session pair", "error", err)
	}
}

// LoadPersisted reads the sealed (token, user) pair written by a previous
// run. It returns common.ErrNoPersistedSession when either half is absent
// and common.ErrPersistedDataCorrupt when the pair exists but cannot be
// unsealed or decoded — the caller must Reset in that case.
func (s *Store) LoadPersisted(ctx context.Context) (models.User, string, error) {
	sealedToken, err := s.repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return models.User{}, "", err
	}
	sealedUser, err := s.repo.Get(ctx, metadata.KeyUser)
	if err != nil {
		return models.User{}, "", err
	}
	if sealedToken == nil || sealedUser == nil {
		return models.User{}, "", common.ErrNoPersistedSession
	}

	var token string
	if err := cryptox.OpenValue(sealedToken, s.sealKey, &token); err != nil {
		return models.User{}, "", common.ErrPersistedDataCorrupt
	}
	var user models.User
	if err := cryptox.OpenValue(sealedUser, s.sealKey, &user); err != nil {
		return models.User{}, "", common.ErrPersistedDataCorrupt
	}
	if token == "" || !user.Role.Valid() {
		return models.User{}, "", common.ErrPersistedDataCorrupt
	}
	return user, token, nil
}

// Preference reads a plain (unsealed) preference key such as theme or
// language. Missing keys return "".
func (s *Store) Preference(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetPreference writes a plain preference key.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, key, []byte(value))
}
