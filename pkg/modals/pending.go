package modals

import (
	"context"
	"sync"
)

// Pending is the receiving half of an open modal. It completes once, either
// with the value passed to Close/CloseWith or with an error.
type Pending[R any] struct {
	done chan struct{}
	once sync.Once
	val  R
	err  error

	wmu       sync.Mutex
	waiters   int
	abandoned bool // the last Wait in progress ended on its context
}

func newPending[R any]() *Pending[R] {
	return &Pending[R]{done: make(chan struct{})}
}

func rejected[R any](err error) *Pending[R] {
	p := newPending[R]()
	p.reject(err)
	return p
}

// complete stores the outcome. Only the first call has any effect.
func (p *Pending[R]) complete(v R, err error) bool {
	completed := false
	p.once.Do(func() {
		p.val = v
		p.err = err
		close(p.done)
		completed = true
	})
	return completed
}

func (p *Pending[R]) resolve(v R) bool {
	return p.complete(v, nil)
}

func (p *Pending[R]) reject(err error) bool {
	var zero R
	return p.complete(zero, err)
}

func (p *Pending[R]) settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done is closed when the pending open has completed.
func (p *Pending[R]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the modal is closed, the registry shuts down, or ctx
// ends. A context error is returned without affecting the Pending, so a
// later Wait can still observe the close.
func (p *Pending[R]) Wait(ctx context.Context) (R, error) {
	p.wmu.Lock()
	p.waiters++
	p.abandoned = false
	p.wmu.Unlock()

	select {
	case <-p.done:
		p.leave(false)
		return p.val, p.err
	case <-ctx.Done():
		p.leave(true)
		var zero R
		return zero, ctx.Err()
	}
}

func (p *Pending[R]) leave(gaveUp bool) {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	p.waiters--
	if gaveUp && p.waiters == 0 {
		p.abandoned = true
	}
}

// forgettable reports whether nobody can observe this Pending any more:
// it has completed, or everyone who waited on it has given up.
func (p *Pending[R]) forgettable() bool {
	if p.settled() {
		return true
	}
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.abandoned && p.waiters == 0
}

// Result returns the outcome without blocking. ok is false while the modal
// is still open.
func (p *Pending[R]) Result() (v R, ok bool, err error) {
	if !p.settled() {
		return v, false, nil
	}
	return p.val, true, p.err
}
