package app

import (
	"context"
	"strings"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/github"
)

// OpenSandbox fetches a sandbox for viewing and records it as recent.
func (a *App) OpenSandbox(ctx context.Context, id string) (api.Sandbox, error) {
	sb, err := a.api.GetSandbox(ctx, id)
	if err != nil {
		return api.Sandbox{}, err
	}
	a.recordRecent(*sb)
	return *sb, nil
}

// ForkSandbox forks id if the user does not own it (see WithOwnedSandbox)
// and returns the editable sandbox.
func (a *App) ForkSandbox(ctx context.Context, id string) (api.Sandbox, error) {
	return a.WithOwnedSandbox(ctx, id, nil)
}

// DeleteSandbox asks for confirmation and deletes the sandbox. It reports
// whether the sandbox was deleted; declining is not an error.
func (a *App) DeleteSandbox(ctx context.Context, id string) (bool, error) {
	st := a.State()
	if !st.IsLoggedIn() {
		return false, a.requireSignIn(ctx, "delete")
	}

	sb, ok := st.Sandbox(id)
	if !ok {
		fetched, err := a.api.GetSandbox(ctx, id)
		if err != nil {
			return false, err
		}
		sb = *fetched
	}
	if !sb.OwnedBy(st.User) {
		return false, ErrNotOwner
	}

	confirmed, err := a.Modals.ConfirmDelete.Open(map[string]any{
		"id":    sb.ID,
		"title": sb.DisplayTitle(),
	}).Wait(ctx)
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}

	if err := a.api.DeleteSandbox(ctx, sb.ID); err != nil {
		return false, err
	}
	a.removeSandbox(sb.ID)
	if err := a.cache.RemoveRecent(sb.ID); err != nil {
		a.logger.Warn("remove recent sandbox", "err", err, "sandbox", sb.ID)
	}
	a.logger.Info("sandbox deleted", "sandbox", sb.ID)
	return true, nil
}

// RenameSandbox asks for a new title through the rename modal. An empty or
// unchanged title leaves the sandbox as it is. Sandboxes the user does not
// own are forked first.
func (a *App) RenameSandbox(ctx context.Context, id string) (api.Sandbox, error) {
	var result api.Sandbox
	_, err := a.WithOwnedSandbox(ctx, id, func(ctx context.Context, sb api.Sandbox) error {
		title, err := a.Modals.Rename.Open(map[string]any{
			"id":    sb.ID,
			"value": sb.Title,
		}).Wait(ctx)
		if err != nil {
			return err
		}
		result, err = a.rename(ctx, sb, title)
		return err
	})
	return result, err
}

// RenameSandboxTo renames without asking.
func (a *App) RenameSandboxTo(ctx context.Context, id, title string) (api.Sandbox, error) {
	var result api.Sandbox
	_, err := a.WithOwnedSandbox(ctx, id, func(ctx context.Context, sb api.Sandbox) error {
		var err error
		result, err = a.rename(ctx, sb, title)
		return err
	})
	return result, err
}

func (a *App) rename(ctx context.Context, sb api.Sandbox, title string) (api.Sandbox, error) {
	title = strings.TrimSpace(title)
	if title == "" || title == sb.Title {
		return sb, nil
	}
	updated, err := a.api.RenameSandbox(ctx, sb.ID, title)
	if err != nil {
		return api.Sandbox{}, err
	}
	a.upsertSandbox(*updated)
	a.recordRecent(*updated)
	a.logger.Info("sandbox renamed", "sandbox", updated.ID, "title", updated.Title)
	return *updated, nil
}

// ImportGitHub creates a sandbox from a GitHub URL. The importing modal is
// shown for the duration of the request.
func (a *App) ImportGitHub(ctx context.Context, rawURL string) (api.Sandbox, error) {
	repo, err := github.ParseURL(rawURL)
	if err != nil {
		return api.Sandbox{}, err
	}
	return a.ImportRepo(ctx, repo)
}

// ImportRepo is ImportGitHub for an already parsed repository.
func (a *App) ImportRepo(ctx context.Context, repo github.Repo) (api.Sandbox, error) {
	if err := a.requireSignIn(ctx, "import"); err != nil {
		return api.Sandbox{}, err
	}

	// Nobody waits on this open; the modal is closed below.
	a.Modals.Importing.Open(map[string]any{
		"repo": repo.FullName(),
		"url":  repo.URL(),
	})
	defer a.Modals.Importing.Close()

	sb, err := a.api.ImportGitHub(ctx, repo.ImportPath())
	if err != nil {
		return api.Sandbox{}, err
	}
	a.upsertSandbox(*sb)
	a.recordRecent(*sb)
	a.logger.Info("repository imported", "repo", repo.FullName(), "sandbox", sb.ID)
	return *sb, nil
}
