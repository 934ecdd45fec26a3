package guard

import (
	stderrors "errors"
	"testing"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/errors"
)

func TestGuardMeasuresOwnSpan(t *testing.T) {
	allocguard.RecordAlloc() // traffic before the guard must not count

	g := Begin(Allow())
	allocguard.RecordAlloc()
	allocguard.RecordAlloc()
	allocguard.RecordDealloc()
	d := g.End()

	if d.Allocs != 2 || d.Reallocs != 0 || d.Deallocs != 1 {
		t.Fatalf("expected delta (2, 0, 1), got (%d, %d, %d)", d.Allocs, d.Reallocs, d.Deallocs)
	}
}

func TestGuardZeroDeltaPassesForbid(t *testing.T) {
	g := Begin(Forbid())
	d := g.End()

	if !d.IsZero() {
		t.Fatalf("expected zero delta, got %+v", d)
	}
}

func TestGuardViolationPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected violation panic")
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic value, got %T", r)
		}
		if err.Kind != errors.KindViolation {
			t.Fatalf("expected violation, got %s", err.Kind)
		}
		if len(err.Channels) != 1 || err.Channels[0] != "deallocs" {
			t.Fatalf("expected [deallocs], got %v", err.Channels)
		}
		if err.Deallocs != 1 {
			t.Fatalf("expected dealloc count 1, got %d", err.Deallocs)
		}
	}()

	g := Begin(Deny(Deallocs))
	allocguard.RecordDealloc()
	g.End()
}

func TestGuardCallbackMode(t *testing.T) {
	var calls int
	var got allocguard.Delta

	g := BeginFunc(func(d allocguard.Delta) {
		calls++
		got = d
	})
	allocguard.RecordAlloc()
	allocguard.RecordRealloc()
	g.End()

	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	if got.Allocs != 1 || got.Reallocs != 1 || got.Deallocs != 0 {
		t.Fatalf("callback saw wrong delta: %+v", got)
	}
}

func TestGuardDoubleEndPanics(t *testing.T) {
	g := Begin(Allow())
	g.End()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on second End")
		}
		if err, ok := r.(*errors.Error); !ok || err.Kind != errors.KindDoubleEnd {
			t.Fatalf("expected double_end error, got %v", r)
		}
	}()
	g.End()
}

func TestGuardNesting(t *testing.T) {
	outer := Begin(Allow())
	allocguard.RecordAlloc()

	inner := Begin(Allow())
	allocguard.RecordAlloc()
	allocguard.RecordRealloc()
	innerDelta := inner.End()

	allocguard.RecordDealloc()
	outerDelta := outer.End()

	if innerDelta.Allocs != 1 || innerDelta.Reallocs != 1 || innerDelta.Deallocs != 0 {
		t.Fatalf("unexpected inner delta: %+v", innerDelta)
	}
	if outerDelta.Allocs != 2 || outerDelta.Reallocs != 1 || outerDelta.Deallocs != 1 {
		t.Fatalf("unexpected outer delta: %+v", outerDelta)
	}
	if innerDelta.Allocs > outerDelta.Allocs ||
		innerDelta.Reallocs > outerDelta.Reallocs ||
		innerDelta.Deallocs > outerDelta.Deallocs {
		t.Fatal("inner delta must be component-wise <= outer delta")
	}
}

func TestGuardWithCountingAllocator(t *testing.T) {
	a := allocguard.NewCounting(allocguard.NewGoAllocator())

	var got allocguard.Delta
	cb := BeginFunc(func(d allocguard.Delta) { got = d })

	// allocate 3 blocks, deallocate 1, reallocate 1
	b1, err := a.Allocate(16)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := a.Allocate(16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(16); err != nil {
		t.Fatal(err)
	}
	a.Free(b1)
	if _, err := a.Reallocate(32, b2); err != nil {
		t.Fatal(err)
	}

	cb.End()
	if got.Allocs != 3 || got.Deallocs != 1 || got.Reallocs != 1 {
		t.Fatalf("expected delta (3, 1, 1), got (%d, %d, %d)", got.Allocs, got.Reallocs, got.Deallocs)
	}
}

func TestGuardFailedAllocationNotMeasured(t *testing.T) {
	a := allocguard.NewCounting(allocguard.NewLimitAllocator(4, allocguard.NewGoAllocator()))

	g := Begin(Deny(Allocs))
	_, err := a.Allocate(1 << 20) // simulated out-of-memory
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindExhausted}) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	d := g.End() // must not panic: the failed attempt performed no allocation

	if d.Allocs != 0 {
		t.Fatalf("failed allocation leaked into delta: %+v", d)
	}
}
