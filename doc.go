// Package allocguard provides allocation accounting and policy enforcement
// for heap traffic routed through its allocator interface.
//
// The library counts allocations, reallocations, and deallocations performed
// during an arbitrary span of execution and can enforce a policy (allow,
// deny selected channels, or forbid everything) so that any violation is
// detected and reported deterministically. It is aimed at allocation-
// sensitive code: real-time paths, hot loops, and embedded targets where a
// stray allocation is a regression.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	allocguard/          Root package with the Allocator interface, the
//	                     counting proxy, and the global counter primitives
//	├── guard/           Scoped accounting guards, policies, and the
//	                     measurement helpers
//	├── guestalloc/      Counting allocator over a WebAssembly guest
//	                     instance's exported allocation functions (wazero)
//	├── heapstats/       Best-effort accounting of the Go runtime's own
//	                     heap via runtime.MemStats
//	└── errors/          Structured error types for violations and
//	                     allocator failures
//
// # Quick Start
//
// Install the counting proxy once, then wrap regions with guards:
//
//	allocguard.Install(allocguard.NewGoAllocator())
//
//	_, delta := guard.Measure(func() []byte {
//	    buf, _ := allocguard.Default().Allocate(64)
//	    return buf
//	})
//	fmt.Println(delta.Allocs) // 1
//
// Enforce a policy instead of measuring:
//
//	guard.Do(guard.Forbid(), func() {
//	    // any heap traffic through the installed allocator panics here
//	})
//
// # Counter Model
//
// The three global counters are process-wide, monotonically non-decreasing,
// and updated with single atomic adds. They are never reset; a "reset" is
// only ever simulated by subtracting two snapshots. Guards in sibling scopes
// therefore never corrupt each other's view.
//
// # Thread Safety
//
// Counter updates and snapshot reads are safe for concurrent use. Guards are
// NOT goroutine-safe: a guard must be ended on the goroutine that began it,
// and allocation activity on other goroutines during a guard's lifetime is
// included in its delta, since the counters are process-wide rather than
// per-goroutine.
package allocguard
