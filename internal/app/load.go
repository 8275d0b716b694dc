package app

import (
	"context"
	"errors"
	"strings"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/session"
	"golang.org/x/sync/errgroup"
)

// LoadApp loads the signed-in user, their sandboxes and the recent list.
// It runs once; later calls return immediately. Concurrent callers share
// one load.
//
// A rejected token signs the session out and the app continues signed
// out. An unreachable service falls back to the cached user and records
// the failure in State.LoadErr. Only context cancellation is returned as
// an error.
func (a *App) LoadApp(ctx context.Context) error {
	if a.State().HasLoaded {
		return nil
	}
	_, err, _ := a.loads.Do("load", func() (any, error) {
		if a.State().HasLoaded {
			return nil, nil
		}
		return nil, a.load(ctx)
	})
	return err
}

// Reload discards the loaded state and loads it again.
func (a *App) Reload(ctx context.Context) error {
	a.update(func(st *State) { st.HasLoaded = false })
	return a.LoadApp(ctx)
}

func (a *App) load(ctx context.Context) error {
	st := State{HasLoaded: true}

	recent, err := a.cache.ListRecent(a.recentLimit())
	if err != nil {
		a.logger.Warn("load recent sandboxes", "err", err)
	}
	st.Recent = recent

	if !a.api.HasToken() {
		a.logger.Debug("no token, starting signed out")
		a.setState(st)
		return nil
	}

	var (
		user *api.User
		list *api.SandboxList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := a.api.CurrentUser(gctx)
		user = u
		return err
	})
	g.Go(func() error {
		l, err := a.api.ListSandboxes(gctx, 1, a.pageSize())
		list = l
		return err
	})
	err = g.Wait()

	switch {
	case err == nil:
		st.User = user
		st.Sandboxes = list.Sandboxes
		if err := a.cache.SaveUser(user); err != nil {
			a.logger.Warn("cache user", "err", err)
		}
		a.logger.Info("app loaded", "user", user.Username, "sandboxes", len(list.Sandboxes))

	case errors.Is(err, api.ErrUnauthorized):
		a.logger.Info("token rejected, signing out")
		a.signOut()

	case ctx.Err() != nil:
		return ctx.Err()

	default:
		a.logger.Warn("load app", "err", err)
		st.LoadErr = err
		if cached, cerr := a.cache.GetUser(); cerr == nil {
			st.User = cached
			st.Offline = true
		}
	}

	a.setState(st)
	return nil
}

func (a *App) setState(st State) {
	a.update(func(cur *State) { *cur = st })
}

// SignIn stores token on the session and reloads the app with it.
func (a *App) SignIn(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	if a.baseDir != "" {
		sess, err := session.SetToken(a.baseDir, token)
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.sess = sess
		a.mu.Unlock()
	}
	a.api.SetToken(token)
	if err := a.Reload(ctx); err != nil {
		return err
	}
	if !a.State().IsLoggedIn() {
		return ErrNotSignedIn
	}
	return nil
}

// SignOut forgets the token and the cached user.
func (a *App) SignOut() {
	a.signOut()
	a.update(func(st *State) {
		st.User = nil
		st.Sandboxes = nil
		st.Offline = false
	})
}

func (a *App) signOut() {
	a.api.SetToken("")
	if a.baseDir != "" {
		if err := session.ClearToken(a.baseDir); err != nil {
			a.logger.Warn("clear session token", "err", err)
		}
	}
	if err := a.cache.ClearUser(); err != nil {
		a.logger.Warn("clear cached user", "err", err)
	}
}
