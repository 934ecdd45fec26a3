// Package heapstats measures the Go runtime's own heap activity via
// runtime.MemStats, for code that cannot route allocations through an
// allocguard.Allocator.
//
// The runtime exposes cumulative malloc and free counts but no
// reallocation concept, so deltas here carry two channels instead of
// three. Measurements are best-effort: the garbage collector and other
// goroutines can contribute background activity, which is why Measure
// forces a collection first and AllocsPerRun averages over many runs.
// For exact, deterministic accounting use the counting proxy in the root
// package instead.
package heapstats
