// Package guard provides scoped allocation accounting with policy
// enforcement.
//
// A Guard snapshots the global counters when it begins and computes the
// per-channel delta when it ends. Guards either deliver the delta to a
// caller-supplied callback (measure-only mode) or evaluate a Policy against
// it, panicking with a structured error when a denied channel saw activity.
// Violations are deliberately unrecoverable: the point is to make silent
// regressions in allocation behavior impossible.
//
// Guards nest lexically. An inner guard's delta is a subset of the outer
// guard's eventual delta, since both read the same process-wide counters.
//
// Architecture notes:
//   - Policies are pure data: a bitmask of channels that must stay at zero.
//   - Begin/End bracket a region explicitly; Measure, With, and Do wrap a
//     closure and guarantee measurement on every exit path, including panic
//     unwind.
//   - A policy violation detected while another panic is already unwinding
//     is logged and suppressed so the original fault is not masked.
//   - A guard must be ended on the goroutine that began it. Allocation
//     activity on other goroutines during its lifetime is included in its
//     delta by design.
package guard
