package allocguard

import "sync/atomic"

// Process-wide operation counters. Monotonically non-decreasing for the
// lifetime of the process; never reset. Resets are only ever simulated by
// subtracting two snapshots, so concurrent guards in sibling scopes cannot
// corrupt each other's view.
var counters struct {
	allocs   atomic.Uint64
	reallocs atomic.Uint64
	deallocs atomic.Uint64
}

// Snapshot is an immutable view of the global counters captured at one
// instant via Current.
type Snapshot struct {
	Allocs   uint64
	Reallocs uint64
	Deallocs uint64
}

// Delta is the per-channel difference between two snapshots, representing
// the heap activity observed between them.
type Delta struct {
	Allocs   uint64
	Reallocs uint64
	Deallocs uint64
}

// Current reads the global counters. Each channel is a single atomic load,
// so a later snapshot is never smaller than an earlier one per channel, even
// with concurrent allocation on other goroutines.
func Current() Snapshot {
	return Snapshot{
		Allocs:   counters.allocs.Load(),
		Reallocs: counters.reallocs.Load(),
		Deallocs: counters.deallocs.Load(),
	}
}

// DeltaSince computes the activity between earlier and s. The receiver must
// be the later of the two snapshots; the counters are monotonic, so the
// subtraction cannot underflow when the snapshots are ordered correctly.
func (s Snapshot) DeltaSince(earlier Snapshot) Delta {
	return Delta{
		Allocs:   s.Allocs - earlier.Allocs,
		Reallocs: s.Reallocs - earlier.Reallocs,
		Deallocs: s.Deallocs - earlier.Deallocs,
	}
}

// IsZero reports whether no heap activity was observed
func (d Delta) IsZero() bool {
	return d.Allocs == 0 && d.Reallocs == 0 && d.Deallocs == 0
}

// Total returns the combined operation count across all three channels
func (d Delta) Total() uint64 {
	return d.Allocs + d.Reallocs + d.Deallocs
}

// RecordAlloc notes one successful allocation. It is exported for allocator
// integrations (the counting proxy, guest allocators); there is no way to
// decrement or reset a counter.
func RecordAlloc() { counters.allocs.Add(1) }

// RecordRealloc notes one successful reallocation. Reallocation is its own
// channel and is never folded into the alloc or dealloc counts.
func RecordRealloc() { counters.reallocs.Add(1) }

// RecordDealloc notes one deallocation
func RecordDealloc() { counters.deallocs.Add(1) }
