package allocguard

import (
	"sync"
	"testing"
)

func TestSnapshotIdempotent(t *testing.T) {
	s1 := Current()
	s2 := Current()

	if s1 != s2 {
		t.Fatalf("snapshots differ with no intervening activity: %+v vs %+v", s1, s2)
	}
	if d := s2.DeltaSince(s1); !d.IsZero() {
		t.Fatalf("expected zero delta, got %+v", d)
	}
}

func TestDeltaSince(t *testing.T) {
	before := Current()

	RecordAlloc()
	RecordAlloc()
	RecordRealloc()
	RecordDealloc()

	d := Current().DeltaSince(before)
	if d.Allocs != 2 || d.Reallocs != 1 || d.Deallocs != 1 {
		t.Fatalf("expected delta (2, 1, 1), got (%d, %d, %d)", d.Allocs, d.Reallocs, d.Deallocs)
	}
	if d.IsZero() {
		t.Error("delta should not be zero")
	}
	if d.Total() != 4 {
		t.Errorf("expected total 4, got %d", d.Total())
	}
}

func TestCountersMonotonic(t *testing.T) {
	s1 := Current()
	RecordAlloc()
	s2 := Current()

	if s2.Allocs <= s1.Allocs {
		t.Fatalf("alloc counter did not advance: %d -> %d", s1.Allocs, s2.Allocs)
	}
}

func TestConcurrentRecordLosesNothing(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	before := Current()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				RecordAlloc()
				RecordRealloc()
				RecordDealloc()
			}
		}()
	}
	wg.Wait()

	d := Current().DeltaSince(before)
	want := uint64(workers * perWorker)
	if d.Allocs != want || d.Reallocs != want || d.Deallocs != want {
		t.Fatalf("lost increments: got (%d, %d, %d), want %d per channel",
			d.Allocs, d.Reallocs, d.Deallocs, want)
	}
}
