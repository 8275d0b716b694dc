package app

import (
	"context"
	"fmt"

	"github.com/marcus/sbx/internal/api"
)

// WithOwnedSandbox makes sure the user can edit sandbox id before running
// fn on it:
//
//   - signed out: the sign-in modal is shown and the call fails with
//     ErrNotSignedIn (or ErrSignInRequested if the user chose to sign in);
//   - someone else's sandbox: it is forked and fn runs on the fork;
//   - own frozen sandbox: the fork-frozen modal decides between forking,
//     unfreezing, or cancelling (ErrCancelled).
//
// The returned sandbox is the one fn ran on. fn may be nil.
func (a *App) WithOwnedSandbox(ctx context.Context, id string, fn func(context.Context, api.Sandbox) error) (api.Sandbox, error) {
	if err := a.requireSignIn(ctx, "edit"); err != nil {
		return api.Sandbox{}, err
	}

	current, err := a.api.GetSandbox(ctx, id)
	if err != nil {
		return api.Sandbox{}, err
	}
	sb := *current
	user := a.State().User

	switch {
	case !sb.OwnedBy(user):
		sb, err = a.fork(ctx, sb)
		if err != nil {
			return api.Sandbox{}, err
		}

	case sb.IsFrozen:
		choice, err := a.Modals.ForkFrozen.Open(map[string]any{
			"id":    sb.ID,
			"title": sb.DisplayTitle(),
		}).Wait(ctx)
		if err != nil {
			return api.Sandbox{}, err
		}

		switch choice {
		case ForkCreate:
			sb, err = a.fork(ctx, sb)
		case ForkUnfreeze:
			var updated *api.Sandbox
			updated, err = a.api.SetFrozen(ctx, sb.ID, false)
			if err == nil {
				sb = *updated
				a.upsertSandbox(sb)
				a.logger.Info("sandbox unfrozen", "sandbox", sb.ID)
			}
		default:
			return sb, ErrCancelled
		}
		if err != nil {
			return api.Sandbox{}, err
		}
	}

	if fn != nil {
		if err := fn(ctx, sb); err != nil {
			return sb, err
		}
	}
	return sb, nil
}

func (a *App) fork(ctx context.Context, sb api.Sandbox) (api.Sandbox, error) {
	forked, err := a.api.ForkSandbox(ctx, sb.ID)
	if err != nil {
		return api.Sandbox{}, err
	}
	a.upsertSandbox(*forked)
	a.recordRecent(*forked)
	a.logger.Info("sandbox forked", "from", sb.ID, "sandbox", forked.ID)
	return *forked, nil
}

// requireSignIn shows the sign-in modal when no user is loaded.
func (a *App) requireSignIn(ctx context.Context, action string) error {
	if a.State().IsLoggedIn() {
		return nil
	}
	signIn, err := a.Modals.SignInRequired.Open(map[string]any{"action": action}).Wait(ctx)
	if err != nil {
		return err
	}
	if signIn {
		return fmt.Errorf("%s: %w", action, ErrSignInRequested)
	}
	return fmt.Errorf("%s: %w", action, ErrNotSignedIn)
}
