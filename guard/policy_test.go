package guard

import (
	stderrors "errors"
	"testing"

	allocguard "github.com/wippyai/alloc-guard"
	"github.com/wippyai/alloc-guard/errors"
)

func TestChannelString(t *testing.T) {
	tests := []struct {
		ch   Channel
		want string
	}{
		{Allocs, "allocs"},
		{Reallocs, "reallocs"},
		{Deallocs, "deallocs"},
		{Allocs | Deallocs, "allocs|deallocs"},
		{All, "allocs|reallocs|deallocs"},
		{0, "none"},
	}
	for _, tt := range tests {
		if got := tt.ch.String(); got != tt.want {
			t.Errorf("Channel(%b).String() = %q, want %q", tt.ch, got, tt.want)
		}
	}
}

func TestPolicyDenies(t *testing.T) {
	p := Deny(Allocs | Reallocs)

	if !p.Denies(Allocs) || !p.Denies(Reallocs) {
		t.Error("expected allocs and reallocs to be denied")
	}
	if p.Denies(Deallocs) {
		t.Error("deallocs should not be denied")
	}
	if !Forbid().Denies(All) {
		t.Error("Forbid should deny every channel")
	}
	if Allow().Denies(Allocs) {
		t.Error("Allow should deny nothing")
	}
}

func TestPolicyCheckZeroDeltaPasses(t *testing.T) {
	var zero allocguard.Delta

	for _, p := range []Policy{Allow(), Deny(Allocs), Deny(All), Forbid()} {
		if err := p.Check(zero); err != nil {
			t.Errorf("zero delta should satisfy %+v, got %v", p, err)
		}
	}
}

func TestPolicyCheckSelectsChannels(t *testing.T) {
	d := allocguard.Delta{Allocs: 0, Reallocs: 2, Deallocs: 1}

	// Denied channel untouched: no violation regardless of other activity
	if err := Deny(Allocs).Check(d); err != nil {
		t.Errorf("deny-allocs over alloc-free region should pass, got %v", err)
	}

	// Denied channel touched: violation names the channel and its count
	err := Deny(Deallocs).Check(d)
	if err == nil {
		t.Fatal("expected violation")
	}
	var verr *errors.Error
	if !stderrors.As(err, &verr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if verr.Kind != errors.KindViolation {
		t.Fatalf("expected violation kind, got %s", verr.Kind)
	}
	if len(verr.Channels) != 1 || verr.Channels[0] != "deallocs" {
		t.Fatalf("expected violated channels [deallocs], got %v", verr.Channels)
	}
	if verr.Deallocs != 1 {
		t.Fatalf("expected dealloc count 1, got %d", verr.Deallocs)
	}
}

func TestPolicyCheckMultipleViolations(t *testing.T) {
	d := allocguard.Delta{Allocs: 3, Reallocs: 1, Deallocs: 2}

	err := Forbid().Check(d)
	if err == nil {
		t.Fatal("expected violation")
	}
	var verr *errors.Error
	if !stderrors.As(err, &verr) {
		t.Fatal("expected *errors.Error")
	}
	if len(verr.Channels) != 3 {
		t.Fatalf("expected all three channels reported, got %v", verr.Channels)
	}
	if verr.Allocs != 3 || verr.Reallocs != 1 || verr.Deallocs != 2 {
		t.Fatalf("violation counts lost: %+v", verr)
	}
}

func TestReallocNotFoldedIntoOtherChannels(t *testing.T) {
	d := allocguard.Delta{Reallocs: 4}

	if err := Deny(Allocs | Deallocs).Check(d); err != nil {
		t.Errorf("reallocs must not count against alloc/dealloc policies, got %v", err)
	}
	if err := Deny(Reallocs).Check(d); err == nil {
		t.Error("expected violation on the realloc channel")
	}
}
