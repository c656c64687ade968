package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/campuslink/internal/client/api"
	"github.com/dmitrijs2005/campuslink/internal/client/client"
	"github.com/dmitrijs2005/campuslink/internal/client/config"
	"github.com/dmitrijs2005/campuslink/internal/client/keystore"
	"github.com/dmitrijs2005/campuslink/internal/client/routing"
	"github.com/dmitrijs2005/campuslink/internal/client/services"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
	"github.com/dmitrijs2005/campuslink/internal/common"
	"github.com/dmitrijs2005/campuslink/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the session store, the auth and campus services, and the view
// shell together.
type App struct {
	config  *config.Config
	store   *session.Store
	auth    services.AuthService
	campus  services.CampusService
	log     logging.Logger
	reader  *bufio.Reader
	closeDB func() error

	unread atomic.Int64

	mu   sync.Mutex
	path string
}

// NewApp builds the full client: local database, seal key, REST client,
// session store, services.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	sealKey, err := keystore.SealKey(cfg.DeviceKeyPath)
	if err != nil {
		return nil, err
	}

	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout)
	store := session.New(repos.Metadata, sealKey, log)

	return &App{
		config:  cfg,
		store:   store,
		auth:    services.NewAuthService(apiClient, store, log),
		campus:  services.NewCampusService(apiClient, log),
		log:     log.With("component", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		closeDB: repos.DB.Close,
		path:    routing.PathLogin,
	}, nil
}

// Run revalidates any persisted session, starts the background watchers,
// and enters the REPL. It returns when the user exits or the context is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.closeDB() }()

	if err := a.auth.Revalidate(ctx); err != nil {
		if !errors.Is(err, common.ErrNoPersistedSession) {
			a.log.Warn(ctx, "session revalidation failed", "error", err)
		}
	}

	// Land on the route the gate picks for the current state.
	a.setPath(routing.DecidePath(a.store.State(), a.currentPath()).RedirectTo)
	if st := a.store.State(); st.IsAuthenticated {
		a.setPath(routing.RoleHome(st.User.Role))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.watchUnread(ctx, a.config.UnreadPollInterval)
	go a.watchSession(ctx)

	printlnFn("Welcome to campuslink (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.store.State().IsAuthenticated
}

func (a *App) currentPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.path
}

func (a *App) setPath(p string) {
	if p == "" {
		return
	}
	a.mu.Lock()
	a.path = p
	a.mu.Unlock()
}

// watchUnread polls the unread-message count while a user is signed in.
// Poll failures only log; the counter keeps its last value.
func (a *App) watchUnread(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			pollCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
			n, err := a.campus.UnreadCount(pollCtx)
			cancel()
			if err != nil {
				a.log.Debug(ctx, "unread poll failed", "error", err)
				continue
			}
			a.unread.Store(int64(n))

		case <-ctx.Done():
			return
		}
	}
}

// watchSession re-evaluates the current route on every session change.
// When the gate no longer allows the route (say, after a logout or reset),
// the app follows the redirect instead of leaving a dead view on screen.
func (a *App) watchSession(ctx context.Context) {
	sub := a.store.Subscribe()
	for {
		select {
		case snap := <-sub:
			if !snap.IsAuthenticated {
				a.unread.Store(0)
			}
			d := routing.DecidePath(snap, a.currentPath())
			if !d.Render {
				a.setPath(d.RedirectTo)
			}

		case <-ctx.Done():
			return
		}
	}
}
