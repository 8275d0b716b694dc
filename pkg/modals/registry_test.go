package modals

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// hangWindow bounds assertions that a Pending stays unresolved.
const hangWindow = 50 * time.Millisecond

type testModals struct {
	reg           *Registry
	confirmDelete *Modal[bool]
	rename        *Modal[string]
}

func newTestModals(t *testing.T, opts ...Option) testModals {
	t.Helper()
	reg := NewRegistry(opts...)
	tm := testModals{
		reg:           reg,
		confirmDelete: MustRegister(reg, "confirmDelete", Definition[bool]{DefaultResult: false}),
		rename: MustRegister(reg, "rename", Definition[string]{
			InitialState: map[string]any{"value": ""},
		}),
	}
	t.Cleanup(reg.Shutdown)
	return tm
}

func waitResult[R any](t *testing.T, p *Pending[R]) (R, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := p.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("pending did not resolve")
	}
	return v, err
}

func assertUnresolved[R any](t *testing.T, p *Pending[R]) {
	t.Helper()
	select {
	case <-p.Done():
		v, _, err := p.Result()
		t.Fatalf("pending resolved unexpectedly: value=%v err=%v", v, err)
	case <-time.After(hangWindow):
	}
}

func TestOpenSetsCurrent(t *testing.T) {
	tm := newTestModals(t)

	for _, name := range tm.reg.Names() {
		t.Run(name, func(t *testing.T) {
			switch name {
			case "confirmDelete":
				tm.confirmDelete.Open(nil)
			case "rename":
				tm.rename.Open(nil)
			}

			snap := tm.reg.Snapshot()
			if snap.Current != name {
				t.Fatalf("Current = %q, want %q", snap.Current, name)
			}
			for other, st := range snap.Modals {
				if st.IsCurrent != (other == name) {
					t.Errorf("%s.IsCurrent = %v with %s open", other, st.IsCurrent, name)
				}
			}
		})
	}
}

func TestCloseWithPayload(t *testing.T) {
	tm := newTestModals(t)

	p := tm.rename.Open(nil)
	tm.rename.CloseWith("main.go")

	v, err := waitResult(t, p)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v != "main.go" {
		t.Errorf("result = %q, want %q", v, "main.go")
	}
}

func TestCloseWithoutPayloadUsesDefault(t *testing.T) {
	reg := NewRegistry()
	defer reg.Shutdown()
	choice := MustRegister(reg, "choice", Definition[string]{DefaultResult: "cancel"})

	p := choice.Open(nil)
	choice.Close()

	v, err := waitResult(t, p)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v != "cancel" {
		t.Errorf("result = %q, want default %q", v, "cancel")
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	tm := newTestModals(t)

	tm.confirmDelete.Close()

	if got := tm.reg.Current(); got != None {
		t.Errorf("Current = %q, want None", got)
	}
	if tm.confirmDelete.IsPending() {
		t.Error("IsPending = true after stray close")
	}
}

func TestReopenMergesStateAndOrphans(t *testing.T) {
	tm := newTestModals(t)

	first := tm.rename.Open(map[string]any{"a": 1})
	second := tm.rename.Open(map[string]any{"b": 2})

	st := tm.rename.State()
	if st.Get("a") != 1 || st.Get("b") != 2 {
		t.Fatalf("fields = %v, want a=1 and b=2", st.Fields)
	}
	if _, ok := st.Fields["value"]; !ok {
		t.Errorf("initial field lost after merge: %v", st.Fields)
	}

	// The first open is expected to hang: Close only reaches the newest resolver.
	tm.rename.CloseWith("x")
	if v, err := waitResult(t, second); err != nil || v != "x" {
		t.Fatalf("second = (%q, %v), want (\"x\", nil)", v, err)
	}
	assertUnresolved(t, first)
}

func TestOrphanRejectedOnShutdown(t *testing.T) {
	tm := newTestModals(t)

	first := tm.rename.Open(nil)
	tm.rename.Open(nil)
	tm.reg.Shutdown()

	if _, err := waitResult(t, first); !errors.Is(err, ErrShutdown) {
		t.Errorf("orphan err = %v, want ErrShutdown", err)
	}
}

func TestAbandonedOrphansArePruned(t *testing.T) {
	tm := newTestModals(t)

	gone := tm.rename.Open(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gone.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait err = %v, want context.Canceled", err)
	}

	waited := tm.rename.Open(nil)
	waiting := make(chan error, 1)
	go func() {
		_, err := waited.Wait(context.Background())
		waiting <- err
	}()
	for !waitEntered(waited) {
		time.Sleep(time.Millisecond)
	}

	idle := tm.rename.Open(nil)
	tm.rename.Open(nil)

	tm.reg.mu.Lock()
	n := len(tm.reg.orphans)
	tm.reg.mu.Unlock()
	if n != 2 {
		t.Errorf("orphans = %d, want 2 (the abandoned open is dropped)", n)
	}

	tm.reg.Shutdown()
	if err := <-waiting; !errors.Is(err, ErrShutdown) {
		t.Errorf("waited orphan err = %v, want ErrShutdown", err)
	}
	if _, err := waitResult(t, idle); !errors.Is(err, ErrShutdown) {
		t.Errorf("idle orphan err = %v, want ErrShutdown", err)
	}
	if _, ok, _ := gone.Result(); ok {
		t.Error("forgotten orphan should stay unresolved")
	}
}

func waitEntered[R any](p *Pending[R]) bool {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.waiters > 0
}

func TestSupersedeCancel(t *testing.T) {
	tm := newTestModals(t, WithSupersedePolicy(SupersedeCancel))

	first := tm.confirmDelete.Open(nil)
	second := tm.confirmDelete.Open(nil)

	if _, err := waitResult(t, first); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first err = %v, want ErrSuperseded", err)
	}
	tm.confirmDelete.CloseWith(true)
	if v, err := waitResult(t, second); err != nil || !v {
		t.Errorf("second = (%v, %v), want (true, nil)", v, err)
	}
}

func TestMismatchedCloseClearsCurrent(t *testing.T) {
	tm := newTestModals(t)

	p := tm.rename.Open(nil)
	tm.confirmDelete.Close()

	if got := tm.reg.Current(); got != None {
		t.Errorf("Current = %q, want None", got)
	}
	// rename's open is still waiting for its own close.
	assertUnresolved(t, p)
	tm.rename.Close()
	if _, err := waitResult(t, p); err != nil {
		t.Errorf("Wait: %v", err)
	}
}

func TestStatePersistsAcrossCycles(t *testing.T) {
	tm := newTestModals(t)

	tm.rename.Open(map[string]any{"value": "index.js"})
	tm.rename.Close()

	st := tm.rename.State()
	if st.String("value") != "index.js" {
		t.Errorf("value = %q after close, want stale %q", st.String("value"), "index.js")
	}
	if st.IsCurrent {
		t.Error("IsCurrent = true after close")
	}
}

func TestScenarioConfirmDelete(t *testing.T) {
	tm := newTestModals(t)

	p := tm.confirmDelete.Open(nil)
	if got := tm.reg.Current(); got != "confirmDelete" {
		t.Fatalf("Current = %q, want confirmDelete", got)
	}

	tm.confirmDelete.CloseWith(true)
	v, err := waitResult(t, p)
	if err != nil || !v {
		t.Errorf("result = (%v, %v), want (true, nil)", v, err)
	}
	if got := tm.reg.Current(); got != None {
		t.Errorf("Current = %q, want None", got)
	}
}

func TestScenarioRename(t *testing.T) {
	tm := newTestModals(t)

	p := tm.rename.Open(map[string]any{"value": "foo.txt"})
	st := tm.rename.State()
	if st.String("value") != "foo.txt" || !st.IsCurrent {
		t.Fatalf("state = %+v, want value=foo.txt isCurrent=true", st)
	}

	tm.rename.Close()
	v, err := waitResult(t, p)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v != "" {
		t.Errorf("result = %q, want zero value", v)
	}
	if got := tm.reg.Current(); got != None {
		t.Errorf("Current = %q, want None", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	tm := newTestModals(t)

	p := tm.confirmDelete.Open(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait err = %v, want DeadlineExceeded", err)
	}

	// The Pending is untouched by the expired wait.
	tm.confirmDelete.CloseWith(true)
	if v, err := waitResult(t, p); err != nil || !v {
		t.Errorf("result = (%v, %v), want (true, nil)", v, err)
	}
}

func TestShutdown(t *testing.T) {
	tm := newTestModals(t)

	p := tm.confirmDelete.Open(nil)
	snaps, _ := tm.reg.Subscribe()
	tm.reg.Shutdown()

	if _, err := waitResult(t, p); !errors.Is(err, ErrShutdown) {
		t.Errorf("pending err = %v, want ErrShutdown", err)
	}

	late := tm.rename.Open(nil)
	if _, ok, err := late.Result(); !ok || !errors.Is(err, ErrShutdown) {
		t.Errorf("open after shutdown = (ok=%v, err=%v), want rejected", ok, err)
	}

	for range snaps {
	}
	tm.reg.Shutdown() // idempotent
}

func TestRegisterErrors(t *testing.T) {
	reg := NewRegistry()
	defer reg.Shutdown()

	m := MustRegister(reg, "a", Definition[int]{})
	if _, err := Register(reg, "a", Definition[int]{}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v, want ErrDuplicate", err)
	}
	if _, err := Register(reg, None, Definition[int]{}); err == nil {
		t.Error("empty name accepted")
	}

	m.Open(nil)
	if _, err := Register(reg, "b", Definition[int]{}); !errors.Is(err, ErrSealed) {
		t.Errorf("late register err = %v, want ErrSealed", err)
	}
}

func TestSubscribeDeliversLatest(t *testing.T) {
	tm := newTestModals(t)

	snaps, cancel := tm.reg.Subscribe()
	defer cancel()

	initial := <-snaps
	if initial.Current != None {
		t.Fatalf("initial Current = %q, want None", initial.Current)
	}

	tm.confirmDelete.Open(nil)
	tm.confirmDelete.Close()
	tm.rename.Open(map[string]any{"value": "a.go"})

	select {
	case snap := <-snaps:
		st, ok := snap.Modal("rename")
		if !ok || !st.IsCurrent || st.String("value") != "a.go" {
			t.Errorf("latest snapshot = %+v, want rename current with value a.go", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	if _, ok := <-snaps; ok {
		t.Error("channel still open after cancel")
	}
}

func TestConcurrentOpenClose(t *testing.T) {
	tm := newTestModals(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := tm.confirmDelete.Open(nil)
			tm.confirmDelete.CloseWith(true)
			select {
			case <-p.Done():
			case <-time.After(hangWindow):
				// superseded by another goroutine's open
			}
		}()
	}
	wg.Wait()

	if got := tm.reg.Current(); got != None && got != "confirmDelete" {
		t.Errorf("Current = %q, want None or confirmDelete", got)
	}
}

func TestParseSupersedePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    SupersedePolicy
		wantErr bool
	}{
		{"", SupersedeOrphan, false},
		{"orphan", SupersedeOrphan, false},
		{" Cancel ", SupersedeCancel, false},
		{"reject", SupersedeOrphan, true},
	}
	for _, tt := range tests {
		got, err := ParseSupersedePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSupersedePolicy(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSupersedePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
