package modals

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
)

// None is the value of Snapshot.Current when no modal is active.
const None = ""

var (
	// ErrShutdown rejects pending opens when the registry is torn down.
	ErrShutdown = errors.New("modals: registry shut down")
	// ErrSuperseded rejects a pending open replaced by a newer one under
	// SupersedeCancel.
	ErrSuperseded = errors.New("modals: superseded by a newer open")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("modals: duplicate modal name")
	// ErrSealed is returned when registering after the first Open.
	ErrSealed = errors.New("modals: registry is sealed")
)

// SupersedePolicy decides what happens to a pending open when the same
// modal is opened again before it was closed.
type SupersedePolicy int

const (
	// SupersedeOrphan drops the earlier resolver without completing it.
	SupersedeOrphan SupersedePolicy = iota
	// SupersedeCancel rejects the earlier Pending with ErrSuperseded.
	SupersedeCancel
)

func (p SupersedePolicy) String() string {
	switch p {
	case SupersedeCancel:
		return "cancel"
	default:
		return "orphan"
	}
}

// ParseSupersedePolicy parses "orphan" or "cancel". An empty string is
// SupersedeOrphan.
func ParseSupersedePolicy(s string) (SupersedePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "orphan":
		return SupersedeOrphan, nil
	case "cancel":
		return SupersedeCancel, nil
	default:
		return SupersedeOrphan, fmt.Errorf("unknown supersede policy %q (want orphan or cancel)", s)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithSupersedePolicy sets how re-opening a waiting modal is handled.
func WithSupersedePolicy(p SupersedePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithLogger sets the logger used for open/close tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Definition describes one modal.
type Definition[R any] struct {
	// InitialState seeds the modal's sub-state. Nil for stateless modals.
	InitialState map[string]any
	// DefaultResult is delivered when the modal is closed without a value.
	DefaultResult R
}

// State is the sub-state of a single modal as seen by renderers.
type State struct {
	Name      string
	IsCurrent bool
	Fields    map[string]any
}

// Get returns a field of the sub-state, or nil.
func (s State) Get(key string) any {
	return s.Fields[key]
}

// String returns a field formatted as a string ("" when absent).
func (s State) String(key string) string {
	v, ok := s.Fields[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Snapshot is a copy of the whole registry state.
type Snapshot struct {
	Current string
	Modals  map[string]State
}

// Modal returns the state for name. ok is false for unregistered names.
func (s Snapshot) Modal(name string) (State, bool) {
	st, ok := s.Modals[name]
	return st, ok
}

// slot is the type-erased view of a Modal[R] the registry needs.
type slot interface {
	name() string
	rejectPending(err error)
}

// canceler is satisfied by every *Pending[R].
type canceler interface {
	reject(err error) bool
	forgettable() bool
}

// Registry holds the active-modal register and every modal's sub-state.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	current string
	states  map[string]map[string]any
	slots   []slot
	orphans []canceler // superseded opens; pruned on Open once forgettable
	subs    map[int]chan Snapshot
	nextSub int
	sealed  bool
	closed  bool
	policy  SupersedePolicy
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		current: None,
		states:  make(map[string]map[string]any),
		subs:    make(map[int]chan Snapshot),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a modal and returns its typed handle. Registration must
// happen before the first Open on any modal.
func Register[R any](r *Registry, name string, def Definition[R]) (*Modal[R], error) {
	if name == None {
		return nil, errors.New("modals: empty modal name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed || r.closed {
		return nil, fmt.Errorf("register %q: %w", name, ErrSealed)
	}
	if _, exists := r.states[name]; exists {
		return nil, fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}

	fields := make(map[string]any, len(def.InitialState))
	maps.Copy(fields, def.InitialState)
	r.states[name] = fields

	m := &Modal[R]{reg: r, id: name, def: def}
	r.slots = append(r.slots, m)
	return m, nil
}

// MustRegister is Register for static setup code; it panics on error.
func MustRegister[R any](r *Registry, name string, def Definition[R]) *Modal[R] {
	m, err := Register(r, name, def)
	if err != nil {
		panic(err)
	}
	return m
}

// Policy returns the configured supersede policy.
func (r *Registry) Policy() SupersedePolicy {
	return r.policy
}

// Current returns the name of the active modal, or None.
func (r *Registry) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Names returns the registered modal names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.slots))
	for _, s := range r.slots {
		names = append(names, s.name())
	}
	return names
}

// Snapshot returns a copy of the registry state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() Snapshot {
	snap := Snapshot{
		Current: r.current,
		Modals:  make(map[string]State, len(r.states)),
	}
	for name, fields := range r.states {
		snap.Modals[name] = State{
			Name:      name,
			IsCurrent: r.current == name,
			Fields:    maps.Clone(fields),
		}
	}
	return snap
}

func (r *Registry) stateLocked(name string) State {
	return State{
		Name:      name,
		IsCurrent: r.current == name,
		Fields:    maps.Clone(r.states[name]),
	}
}

// Subscribe returns a channel that receives a Snapshot after every change.
// Only the latest snapshot is buffered; a slow reader skips intermediate
// states. The channel is closed by the returned cancel func or Shutdown.
func (r *Registry) Subscribe() (<-chan Snapshot, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if r.closed {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- r.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if sub, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(sub)
			}
		})
	}
}

// publishLocked delivers the current snapshot to subscribers, replacing
// any snapshot they have not read yet. Callers hold r.mu, so there is a
// single sender per channel.
func (r *Registry) publishLocked() {
	if len(r.subs) == 0 {
		return
	}
	snap := r.snapshotLocked()
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Shutdown rejects every pending open, including orphaned ones, with
// ErrShutdown and closes all subscriptions. Later opens return Pendings
// that are already rejected.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.current = None
	slots := r.slots
	orphans := r.orphans
	r.orphans = nil
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()

	for _, s := range slots {
		s.rejectPending(ErrShutdown)
	}
	for _, o := range orphans {
		o.reject(ErrShutdown)
	}
	r.logger.Debug("modal registry shut down", "orphans", len(orphans))
}
