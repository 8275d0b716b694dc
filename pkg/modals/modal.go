package modals

import (
	"maps"
	"slices"
)

// Modal is the typed handle for one registered modal. R is the type of
// value delivered to whoever opened it.
type Modal[R any] struct {
	reg     *Registry
	id      string
	def     Definition[R]
	pending *Pending[R] // guarded by reg.mu
}

func (m *Modal[R]) name() string { return m.id }

func (m *Modal[R]) rejectPending(err error) {
	m.reg.mu.Lock()
	p := m.pending
	m.pending = nil
	m.reg.mu.Unlock()
	if p != nil {
		p.reject(err)
	}
}

// Name returns the registered name.
func (m *Modal[R]) Name() string {
	return m.id
}

// DefaultResult returns the value Close delivers.
func (m *Modal[R]) DefaultResult() R {
	return m.def.DefaultResult
}

// Open makes this modal current, merges fields into its sub-state and
// returns a Pending that completes on the next Close or CloseWith.
func (m *Modal[R]) Open(fields map[string]any) *Pending[R] {
	r := m.reg
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return rejected[R](ErrShutdown)
	}

	r.sealed = true
	r.current = m.id
	maps.Copy(r.states[m.id], fields)

	var superseded *Pending[R]
	if prev := m.pending; prev != nil && !prev.settled() {
		if r.policy == SupersedeCancel {
			superseded = prev
		} else {
			r.orphans = slices.DeleteFunc(r.orphans, func(o canceler) bool { return o.forgettable() })
			r.orphans = append(r.orphans, prev)
		}
	}
	p := newPending[R]()
	m.pending = p

	r.publishLocked()
	r.mu.Unlock()

	if superseded != nil {
		superseded.reject(ErrSuperseded)
		r.logger.Debug("modal open superseded", "modal", m.id, "policy", r.policy)
	} else {
		r.logger.Debug("modal opened", "modal", m.id)
	}
	return p
}

// Close clears the current modal and resolves the pending open with the
// modal's DefaultResult. Current is cleared even when another modal is
// the active one.
func (m *Modal[R]) Close() {
	m.close(m.def.DefaultResult)
}

// CloseWith is Close with an explicit result.
func (m *Modal[R]) CloseWith(v R) {
	m.close(v)
}

func (m *Modal[R]) close(v R) {
	r := m.reg
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.current = None
	p := m.pending
	m.pending = nil
	r.publishLocked()
	r.mu.Unlock()

	if p != nil {
		p.resolve(v)
		r.logger.Debug("modal closed", "modal", m.id)
	}
}

// IsCurrent reports whether this modal is the active one.
func (m *Modal[R]) IsCurrent() bool {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	return m.reg.current == m.id
}

// IsPending reports whether an Open is waiting for a Close.
func (m *Modal[R]) IsPending() bool {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	return m.pending != nil && !m.pending.settled()
}

// State returns a copy of the modal's sub-state.
func (m *Modal[R]) State() State {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	return m.reg.stateLocked(m.id)
}
