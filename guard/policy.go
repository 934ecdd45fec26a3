package guard

import (
	"strings"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/errors"
)

// Channel selects one or more of the three tracked operation kinds
type Channel uint8

const (
	Allocs Channel = 1 << iota
	Reallocs
	Deallocs

	// All covers every channel
	All = Allocs | Reallocs | Deallocs
)

func (c Channel) String() string {
	var parts []string
	if c&Allocs != 0 {
		parts = append(parts, "allocs")
	}
	if c&Reallocs != 0 {
		parts = append(parts, "reallocs")
	}
	if c&Deallocs != 0 {
		parts = append(parts, "deallocs")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Policy specifies which channels must remain at zero within a guarded
// scope. Policies are pure data with no lifecycle of their own.
type Policy struct {
	deny Channel
}

// Allow places no restriction on heap activity
func Allow() Policy { return Policy{} }

// Deny fails a guard whose delta is nonzero on any of the given channels.
// Channels combine as a bitmask: Deny(Allocs | Deallocs) permits only
// reallocations.
func Deny(ch Channel) Policy { return Policy{deny: ch} }

// Forbid denies every channel; the guarded region must perform no heap
// traffic at all.
func Forbid() Policy { return Policy{deny: All} }

// Denies reports whether the policy restricts every channel in ch
func (p Policy) Denies(ch Channel) bool { return p.deny&ch == ch }

// Check evaluates the policy against a measured delta. It returns nil when
// the delta satisfies the policy and a *errors.Error naming the violated
// channels and their counts otherwise. A zero delta satisfies every policy.
func (p Policy) Check(d allocguard.Delta) error {
	var violated []string
	if p.deny&Allocs != 0 && d.Allocs > 0 {
		violated = append(violated, "allocs")
	}
	if p.deny&Reallocs != 0 && d.Reallocs > 0 {
		violated = append(violated, "reallocs")
	}
	if p.deny&Deallocs != 0 && d.Deallocs > 0 {
		violated = append(violated, "deallocs")
	}
	if violated == nil {
		return nil
	}
	return errors.Violation(violated, d.Allocs, d.Reallocs, d.Deallocs)
}
