package guard

import (
	"go.uber.org/zap"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/errors"
)

// Guard bounds a code region and detects heap-activity policy violations
// within it. It snapshots the global counters when it begins and measures
// the delta when it ends.
//
// A Guard belongs to one scope on one goroutine: begin it, run the region,
// and end it exactly once, usually with defer. Prefer Measure, With, or Do
// when wrapping a closure; they guarantee measurement on every exit path.
type Guard struct {
	callback func(allocguard.Delta)
	policy   Policy
	entry    allocguard.Snapshot
	ended    bool
}

// Begin starts a guard that enforces p when it ends
func Begin(p Policy) *Guard {
	return &Guard{policy: p, entry: allocguard.Current()}
}

// BeginFunc starts a measure-only guard. When it ends, the delta is handed
// to cb exactly once and no policy is applied; the allow/deny decision is
// delegated to the caller.
func BeginFunc(cb func(allocguard.Delta)) *Guard {
	return &Guard{callback: cb, entry: allocguard.Current()}
}

// End measures the activity since Begin and returns the delta. For a policy
// guard it evaluates the policy first, logging and panicking with a
// *errors.Error when a denied channel saw activity. Ending a guard twice
// panics.
func (g *Guard) End() allocguard.Delta {
	if g.ended {
		panic(errors.DoubleEnd())
	}
	g.ended = true

	d := allocguard.Current().DeltaSince(g.entry)
	if g.callback != nil {
		g.callback(d)
		return d
	}
	if err := g.policy.Check(d); err != nil {
		Logger().Error("allocation policy violated",
			zap.Uint64("allocs", d.Allocs),
			zap.Uint64("reallocs", d.Reallocs),
			zap.Uint64("deallocs", d.Deallocs),
			zap.Error(err))
		panic(err)
	}
	return d
}

// abandon measures during an unwind that is already in flight. The policy
// is still evaluated, but a violation is logged and suppressed rather than
// raised, so the original fault is not masked by a second one.
func (g *Guard) abandon() {
	if g.ended {
		return
	}
	g.ended = true

	d := allocguard.Current().DeltaSince(g.entry)
	if g.callback != nil {
		g.callback(d)
		return
	}
	if err := g.policy.Check(d); err != nil {
		Logger().Warn("policy violation during unwind suppressed",
			zap.Uint64("allocs", d.Allocs),
			zap.Uint64("reallocs", d.Reallocs),
			zap.Uint64("deallocs", d.Deallocs),
			zap.Error(err))
	}
}
