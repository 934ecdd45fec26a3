package heapstats

import "runtime"

// Snapshot captures the runtime's cumulative heap operation counts
type Snapshot struct {
	Mallocs uint64
	Frees   uint64
}

// Delta is the difference between two snapshots
type Delta struct {
	Mallocs uint64
	Frees   uint64
}

// Read captures the current malloc and free counts. ReadMemStats stops the
// world briefly; do not call it from a hot path.
func Read() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Snapshot{Mallocs: m.Mallocs, Frees: m.Frees}
}

// DeltaSince computes the activity between earlier and s. The receiver must
// be the later snapshot.
func (s Snapshot) DeltaSince(earlier Snapshot) Delta {
	return Delta{
		Mallocs: s.Mallocs - earlier.Mallocs,
		Frees:   s.Frees - earlier.Frees,
	}
}

// IsZero reports whether no heap operations were observed
func (d Delta) IsZero() bool {
	return d.Mallocs == 0 && d.Frees == 0
}

// Measure runs fn and returns the runtime heap operations it caused. A
// collection is forced first so pending frees from earlier activity do not
// pollute the result.
func Measure(fn func()) Delta {
	runtime.GC()
	before := Read()
	fn()
	return Read().DeltaSince(before)
}

// AllocsPerRun returns the average number of heap allocations per call of
// fn over runs calls. The first call is a warmup and is not counted, so
// one-time lazy initialization inside fn does not skew the result.
func AllocsPerRun(runs int, fn func()) float64 {
	fn()
	runtime.GC()

	before := Read()
	for i := 0; i < runs; i++ {
		fn()
	}
	d := Read().DeltaSince(before)
	return float64(d.Mallocs) / float64(runs)
}
