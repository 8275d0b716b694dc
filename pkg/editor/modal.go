package editor

import (
	"reflect"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/pkg/modals"
	"github.com/marcus/sbx/pkg/ui/dialog"
)

// applySnapshot shows the dialog of the current modal. A dialog is rebuilt
// only when the current modal or its sub-state changed, so focus and input
// survive unrelated snapshots.
func (m *Model) applySnapshot(snap modals.Snapshot) {
	m.snap = snap
	if snap.Current == modals.None {
		m.dlg = nil
		m.dlgFor = modals.State{}
		return
	}
	st, ok := snap.Modal(snap.Current)
	if !ok {
		m.dlg = nil
		return
	}
	if m.dlg != nil && m.dlgFor.Name == st.Name && reflect.DeepEqual(m.dlgFor.Fields, st.Fields) {
		return
	}
	m.dlgFor = st
	m.dlg = m.buildDialog(st)
}

func (m *Model) buildDialog(st modals.State) *dialog.Dialog {
	width := min(60, max(m.Width-4, 30))

	switch st.Name {
	case app.ModalConfirmDelete:
		d := dialog.New("Delete sandbox?", dialog.WithVariant(dialog.VariantDanger), dialog.WithWidth(width))
		d.AddSection(dialog.Text("Delete \"" + st.String("title") + "\"? This cannot be undone."))
		d.AddSection(dialog.Spacer())
		d.AddSection(dialog.Buttons(
			dialog.Btn(" Delete ", "delete", dialog.BtnDanger()),
			dialog.Btn(" Cancel ", dialog.ActionCancel),
		))
		return d

	case app.ModalRename:
		ti := textinput.New()
		ti.Placeholder = "sandbox title"
		ti.CharLimit = 120
		ti.SetValue(st.String("value"))
		ti.CursorEnd()
		ti.Focus()
		m.renameInput = &ti

		d := dialog.New("Rename sandbox", dialog.WithWidth(width), dialog.WithPrimaryAction("save"))
		d.AddSection(dialog.Input("title", "Title", m.renameInput))
		d.AddSection(dialog.Spacer())
		d.AddSection(dialog.Buttons(
			dialog.Btn(" Save ", "save"),
			dialog.Btn(" Cancel ", dialog.ActionCancel),
		))
		return d

	case app.ModalForkFrozen:
		idx := 0
		m.forkIdx = &idx
		d := dialog.New("Sandbox is frozen", dialog.WithVariant(dialog.VariantInfo), dialog.WithWidth(width))
		d.AddSection(dialog.Text("\"" + st.String("title") + "\" is frozen. Edits need a fork or an unfreeze."))
		d.AddSection(dialog.Spacer())
		d.AddSection(dialog.List("choice", []dialog.ListItem{
			{ID: string(app.ForkCreate), Label: "Fork it"},
			{ID: string(app.ForkUnfreeze), Label: "Unfreeze and edit"},
			{ID: string(app.ForkCancel), Label: "Cancel"},
		}, m.forkIdx))
		return d

	case app.ModalSignInRequired:
		action := st.String("action")
		if action == "" {
			action = "continue"
		}
		d := dialog.New("Sign in required", dialog.WithVariant(dialog.VariantInfo), dialog.WithWidth(width))
		d.AddSection(dialog.Text("You need to sign in to " + action + "."))
		d.AddSection(dialog.Spacer())
		d.AddSection(dialog.Buttons(
			dialog.Btn(" Sign in ", "signin"),
			dialog.Btn(" Not now ", dialog.ActionCancel),
		))
		return d

	case app.ModalImporting:
		d := dialog.New("Importing", dialog.WithWidth(width), dialog.WithDismissable(false), dialog.WithHints(false))
		d.AddSection(dialog.Text("Importing " + st.String("repo")))
		d.AddSection(dialog.Muted(st.String("url")))
		return d
	}

	// Registered but without a view.
	d := dialog.New(st.Name, dialog.WithWidth(width))
	d.AddSection(dialog.Buttons(dialog.Btn(" Close ", dialog.ActionCancel)))
	return d
}

// handleModalKey feeds a key to the dialog and settles the current modal
// when the dialog produced an action.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.dlg.HandleKey(msg)
	if action == "" {
		return m, cmd
	}

	mods := m.app.Modals
	switch m.dlgFor.Name {
	case app.ModalConfirmDelete:
		if action == "delete" {
			mods.ConfirmDelete.CloseWith(true)
		} else {
			mods.ConfirmDelete.Close()
		}
	case app.ModalRename:
		if action == "save" && m.renameInput != nil {
			mods.Rename.CloseWith(m.renameInput.Value())
		} else {
			mods.Rename.Close()
		}
	case app.ModalForkFrozen:
		switch choice := app.ForkChoice(action); choice {
		case app.ForkCreate, app.ForkUnfreeze:
			mods.ForkFrozen.CloseWith(choice)
		default:
			mods.ForkFrozen.Close()
		}
	case app.ModalSignInRequired:
		if action == "signin" {
			mods.SignInRequired.CloseWith(true)
		} else {
			mods.SignInRequired.Close()
		}
	case app.ModalImporting:
		// Closed by the import itself.
		return m, cmd
	default:
		// No typed handle to settle it with; hide it locally.
	}

	m.dlg = nil
	m.dlgFor = modals.State{}
	m.renameInput = nil
	m.forkIdx = nil
	return m, cmd
}
