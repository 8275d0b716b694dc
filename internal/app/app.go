// Package app is the editor's application root: it owns the modal set, the
// API client, the local cache and the loaded user state, and runs the
// multi-step workflows (bootstrap, owned-sandbox guard, delete, rename,
// import) that the UI and the CLI trigger.
package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/config"
	"github.com/marcus/sbx/internal/db"
	"github.com/marcus/sbx/internal/session"
	"github.com/marcus/sbx/pkg/modals"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotSignedIn is returned by workflows that need an account.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrSignInRequested means the user answered the sign-in modal with
	// "sign in"; the UI should navigate to the sign-in page.
	ErrSignInRequested = errors.New("sign in requested")
	// ErrCancelled is returned when the user dismissed a modal.
	ErrCancelled = errors.New("cancelled")
	// ErrNotOwner is returned when deleting someone else's sandbox.
	ErrNotOwner = errors.New("sandbox is owned by another user")
)

// API is the subset of *api.Client the app uses.
type API interface {
	HasToken() bool
	SetToken(token string)
	CurrentUser(ctx context.Context) (*api.User, error)
	ListSandboxes(ctx context.Context, page, pageSize int) (*api.SandboxList, error)
	GetSandbox(ctx context.Context, id string) (*api.Sandbox, error)
	ForkSandbox(ctx context.Context, id string) (*api.Sandbox, error)
	RenameSandbox(ctx context.Context, id, title string) (*api.Sandbox, error)
	SetFrozen(ctx context.Context, id string, frozen bool) (*api.Sandbox, error)
	DeleteSandbox(ctx context.Context, id string) error
	ImportGitHub(ctx context.Context, importPath string) (*api.Sandbox, error)
}

// Cache is the subset of *db.DB the app uses.
type Cache interface {
	SaveUser(u *api.User) error
	GetUser() (*api.User, error)
	ClearUser() error
	TouchRecent(sb api.Sandbox) error
	ListRecent(limit int) ([]db.RecentSandbox, error)
	RemoveRecent(id string) error
	Close() error
}

// State is the loaded user/session state.
type State struct {
	HasLoaded bool
	User      *api.User
	Sandboxes []api.Sandbox
	Recent    []db.RecentSandbox
	// LoadErr is the last bootstrap failure that was recovered from, e.g.
	// the service being unreachable.
	LoadErr error
	// Offline is set when the user was restored from the cache.
	Offline bool
}

// IsLoggedIn reports whether a user is known.
func (s State) IsLoggedIn() bool {
	return s.User != nil
}

// Sandbox looks up a loaded sandbox by ID.
func (s State) Sandbox(id string) (api.Sandbox, bool) {
	for _, sb := range s.Sandboxes {
		if sb.ID == id {
			return sb, true
		}
	}
	return api.Sandbox{}, false
}

// Deps are the collaborators of an App.
type Deps struct {
	BaseDir string
	Config  *config.Config
	API     API
	Cache   Cache
	Session *session.Session
	Logger  *slog.Logger
}

// App is the application root. It is safe for concurrent use; workflows
// typically run on background goroutines while the UI renders.
type App struct {
	baseDir string
	cfg     *config.Config
	api     API
	cache   Cache
	logger  *slog.Logger

	Modals *Modals

	loads singleflight.Group

	mu    sync.RWMutex
	state State
	sess  *session.Session
}

// New builds an App and its modal registry.
func New(d Deps) (*App, error) {
	if d.API == nil {
		return nil, errors.New("app: API client is required")
	}
	if d.Cache == nil {
		return nil, errors.New("app: cache is required")
	}
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := cfg.SupersedePolicy()
	if err != nil {
		return nil, err
	}

	return &App{
		baseDir: d.BaseDir,
		cfg:     cfg,
		api:     d.API,
		cache:   d.Cache,
		sess:    d.Session,
		logger:  logger,
		Modals:  NewModals(modals.WithSupersedePolicy(policy), modals.WithLogger(logger)),
	}, nil
}

// Config returns the app configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// SessionID returns the editor session ID, or "".
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sess == nil {
		return ""
	}
	return a.sess.ID
}

// State returns a copy of the loaded state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st := a.state
	st.Sandboxes = slices.Clone(a.state.Sandboxes)
	st.Recent = slices.Clone(a.state.Recent)
	return st
}

func (a *App) update(fn func(*State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
}

// upsertSandbox replaces a loaded sandbox or prepends a new one.
func (a *App) upsertSandbox(sb api.Sandbox) {
	a.update(func(st *State) {
		for i := range st.Sandboxes {
			if st.Sandboxes[i].ID == sb.ID {
				st.Sandboxes[i] = sb
				return
			}
		}
		if sb.OwnedBy(st.User) {
			st.Sandboxes = append([]api.Sandbox{sb}, st.Sandboxes...)
		}
	})
}

func (a *App) removeSandbox(id string) {
	a.update(func(st *State) {
		st.Sandboxes = slices.DeleteFunc(st.Sandboxes, func(sb api.Sandbox) bool { return sb.ID == id })
		st.Recent = slices.DeleteFunc(st.Recent, func(r db.RecentSandbox) bool { return r.ID == id })
	})
}

// recordRecent stores sb in the recent list, logging cache failures.
func (a *App) recordRecent(sb api.Sandbox) {
	if err := a.cache.TouchRecent(sb); err != nil {
		a.logger.Warn("record recent sandbox", "err", err, "sandbox", sb.ID)
		return
	}
	recent, err := a.cache.ListRecent(a.recentLimit())
	if err != nil {
		a.logger.Warn("list recent sandboxes", "err", err)
		return
	}
	a.update(func(st *State) { st.Recent = recent })
}

func (a *App) recentLimit() int {
	if n := a.cfg.Dashboard.RecentLimit; n > 0 {
		return n
	}
	return 5
}

func (a *App) pageSize() int {
	if n := a.cfg.Dashboard.PageSize; n > 0 {
		return n
	}
	return 50
}

// Shutdown rejects pending modals and closes the cache.
func (a *App) Shutdown() error {
	a.Modals.Registry.Shutdown()
	return a.cache.Close()
}
