package guard

import allocguard "github.com/wippyai/alloc-guard"

// Measure runs fn inside a measure-only guard and returns its result along
// with the heap activity it caused.
func Measure[T any](fn func() T) (T, allocguard.Delta) {
	return With(Allow(), fn)
}

// With runs fn inside a guard enforcing p and returns the result and the
// measured delta. Measurement happens on every exit path: if fn panics the
// guard still measures, but a policy violation found during that unwind is
// suppressed in favor of the original panic.
func With[T any](p Policy, fn func() T) (T, allocguard.Delta) {
	g := Begin(p)
	defer func() {
		if r := recover(); r != nil {
			g.abandon()
			panic(r)
		}
	}()
	result := fn()
	return result, g.End()
}

// Do is With for closures with no result
func Do(p Policy, fn func()) allocguard.Delta {
	_, d := With(p, func() struct{} {
		fn()
		return struct{}{}
	})
	return d
}
