package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/output"
	"github.com/marcus/sbx/pkg/modals"
	"golang.org/x/term"
)

// prompter answers the app's modals on the command line. Without a
// terminal it only answers what --yes allows and dismisses the rest.
type prompter struct {
	mods        *app.Modals
	out         io.Writer
	yes         bool
	interactive bool
}

func newPrompter(mods *app.Modals, out io.Writer) *prompter {
	return &prompter{
		mods:        mods,
		out:         out,
		yes:         assumeYes,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// start answers modals until ctx ends or the registry shuts down. The
// returned func stops it and waits for it to exit.
func (p *prompter) start(ctx context.Context) func() {
	snaps, unsubscribe := p.mods.Registry.Subscribe()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				if snap.Current == modals.None {
					continue
				}
				if st, ok := snap.Modal(snap.Current); ok {
					p.answer(ctx, st)
				}
			}
		}
	}()

	return func() {
		cancel()
		unsubscribe()
		<-done
	}
}

func (p *prompter) answer(ctx context.Context, st modals.State) {
	switch st.Name {
	case app.ModalConfirmDelete:
		ok := p.yes
		if !ok && p.interactive {
			ok = p.confirm(ctx, fmt.Sprintf("Delete %q? This cannot be undone.", st.String("title")), "Delete")
		} else if !ok {
			output.Warning("not deleting %s without --yes", st.String("id"))
		}
		if ok {
			p.mods.ConfirmDelete.CloseWith(true)
		} else {
			p.mods.ConfirmDelete.Close()
		}

	case app.ModalRename:
		title := st.String("value")
		if !p.interactive {
			p.mods.Rename.Close()
			return
		}
		input := huh.NewInput().Title("New title").Value(&title)
		if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
			p.mods.Rename.Close()
			return
		}
		p.mods.Rename.CloseWith(title)

	case app.ModalForkFrozen:
		switch {
		case p.yes:
			p.mods.ForkFrozen.CloseWith(app.ForkCreate)
		case p.interactive:
			choice := app.ForkCreate
			sel := huh.NewSelect[app.ForkChoice]().
				Title(fmt.Sprintf("%q is frozen", st.String("title"))).
				Options(
					huh.NewOption("Fork it", app.ForkCreate),
					huh.NewOption("Unfreeze and edit", app.ForkUnfreeze),
					huh.NewOption("Cancel", app.ForkCancel),
				).
				Value(&choice)
			if err := huh.NewForm(huh.NewGroup(sel)).RunWithContext(ctx); err != nil {
				p.mods.ForkFrozen.Close()
				return
			}
			p.mods.ForkFrozen.CloseWith(choice)
		default:
			output.Warning("sandbox is frozen; pass --yes to fork it")
			p.mods.ForkFrozen.Close()
		}

	case app.ModalSignInRequired:
		output.Warning("sign in to %s: run \"sbx login\"", st.String("action"))
		p.mods.SignInRequired.Close()

	case app.ModalImporting:
		fmt.Fprintln(p.out, output.Muted("Importing "+st.String("repo")+"…"))
	}
}

func (p *prompter) confirm(ctx context.Context, title, affirmative string) bool {
	ok := false
	c := huh.NewConfirm().Title(title).Affirmative(affirmative).Negative("Cancel").Value(&ok)
	if err := huh.NewForm(huh.NewGroup(c)).RunWithContext(ctx); err != nil {
		return false
	}
	return ok
}

// withPrompter runs fn while p answers modals.
func withPrompter(ctx context.Context, p *prompter, fn func(context.Context) error) error {
	stop := p.start(ctx)
	defer stop()
	return fn(ctx)
}
