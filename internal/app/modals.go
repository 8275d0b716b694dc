package app

import "github.com/marcus/sbx/pkg/modals"

// Modal names.
const (
	ModalConfirmDelete  = "confirmDelete"
	ModalRename         = "rename"
	ModalForkFrozen     = "forkFrozenSandbox"
	ModalSignInRequired = "signInRequired"
	ModalImporting      = "importing"
)

// ForkChoice is the answer to the frozen-sandbox modal.
type ForkChoice string

const (
	ForkCancel   ForkChoice = "cancel"
	ForkCreate   ForkChoice = "fork"
	ForkUnfreeze ForkChoice = "unfreeze"
)

// Modals is the editor's modal set. Every modal the editor can show is
// registered here, so the set of names is fixed when the app starts.
type Modals struct {
	Registry *modals.Registry

	// ConfirmDelete resolves true when the user confirms. Fields: id, title.
	ConfirmDelete *modals.Modal[bool]
	// Rename resolves with the new title. Fields: id, value.
	Rename *modals.Modal[string]
	// ForkFrozen asks how to edit a frozen sandbox. Fields: id, title.
	ForkFrozen *modals.Modal[ForkChoice]
	// SignInRequired resolves true when the user chose to sign in.
	// Fields: action.
	SignInRequired *modals.Modal[bool]
	// Importing is shown while an import runs and closed by the app.
	// Fields: repo, url.
	Importing *modals.Modal[struct{}]
}

// NewModals registers the editor modals on a fresh registry.
func NewModals(opts ...modals.Option) *Modals {
	reg := modals.NewRegistry(opts...)
	return &Modals{
		Registry: reg,
		ConfirmDelete: modals.MustRegister(reg, ModalConfirmDelete, modals.Definition[bool]{
			InitialState:  map[string]any{"id": "", "title": ""},
			DefaultResult: false,
		}),
		Rename: modals.MustRegister(reg, ModalRename, modals.Definition[string]{
			InitialState: map[string]any{"id": "", "value": ""},
		}),
		ForkFrozen: modals.MustRegister(reg, ModalForkFrozen, modals.Definition[ForkChoice]{
			InitialState:  map[string]any{"id": "", "title": ""},
			DefaultResult: ForkCancel,
		}),
		SignInRequired: modals.MustRegister(reg, ModalSignInRequired, modals.Definition[bool]{
			InitialState: map[string]any{"action": ""},
		}),
		Importing: modals.MustRegister(reg, ModalImporting, modals.Definition[struct{}]{
			InitialState: map[string]any{"repo": "", "url": ""},
		}),
	}
}
