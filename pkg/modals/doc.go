// Package modals tracks which modal dialog is active and connects the code
// that asks for a modal with the code that eventually dismisses it.
//
// A Registry is built once at startup by registering every modal with a
// typed handle:
//
//	reg := modals.NewRegistry()
//	confirm := modals.MustRegister(reg, "confirmDelete", modals.Definition[bool]{
//	    DefaultResult: false,
//	})
//	rename := modals.MustRegister(reg, "rename", modals.Definition[string]{
//	    InitialState: map[string]any{"value": ""},
//	})
//
// Workflow code opens a modal and waits for its result:
//
//	ok, err := confirm.Open(nil).Wait(ctx)
//
// The rendering layer watches Subscribe for snapshots, draws the modal whose
// IsCurrent flag is set, and wires its buttons to Close or CloseWith.
//
// # Semantics
//
//   - Open makes the modal current and shallow-merges the given fields into
//     its sub-state. Sub-state is kept between open/close cycles.
//   - Close clears the current modal regardless of which one is active and
//     resolves the pending open with the modal's DefaultResult. CloseWith
//     resolves it with an explicit value. Closing a modal that has no
//     pending open only clears the current modal.
//   - Opening a modal that is already waiting replaces the stored resolver.
//     With SupersedeOrphan (the default) the earlier Pending is never
//     resolved by Close; it only finishes when its context ends or the
//     registry shuts down. An orphan whose waiters have all given up is
//     forgotten on a later Open and is not rejected at shutdown.
//     SupersedeCancel rejects it with ErrSuperseded.
//   - Shutdown rejects every outstanding Pending with ErrShutdown.
package modals
