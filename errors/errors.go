package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInstall Phase = "install" // allocator installation
	PhaseAlloc   Phase = "alloc"   // allocator forwarding
	PhaseMeasure Phase = "measure" // guard measurement and policy checks
	PhaseGuest   Phase = "guest"   // WASM guest allocator calls
)

// Kind categorizes the error
type Kind string

const (
	KindViolation        Kind = "violation"         // policy breached by a measured delta
	KindExhausted        Kind = "exhausted"         // allocation budget exceeded
	KindDoubleEnd        Kind = "double_end"        // guard ended more than once
	KindAlreadyInstalled Kind = "already_installed" // second Install call
	KindMissingExport    Kind = "missing_export"    // guest lacks an allocation export
	KindGuestTrap        Kind = "guest_trap"        // guest allocation function trapped
	KindInvalidSize      Kind = "invalid_size"      // negative or overflowing size request
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Detail   string
	Channels []string
	Allocs   uint64
	Reallocs uint64
	Deallocs uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Channels) > 0 {
		b.WriteString(" on ")
		b.WriteString(strings.Join(e.Channels, ","))
	}

	if e.Kind == KindViolation {
		fmt.Fprintf(&b, ": allocations=%d, reallocations=%d, deallocations=%d",
			e.Allocs, e.Reallocs, e.Deallocs)
	}

	if e.Detail != "" {
		if e.Kind == KindViolation {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Channels sets the names of the violated channels
func (b *Builder) Channels(names ...string) *Builder {
	b.err.Channels = names
	return b
}

// Counts sets the per-channel counts of the offending delta
func (b *Builder) Counts(allocs, reallocs, deallocs uint64) *Builder {
	b.err.Allocs = allocs
	b.err.Reallocs = reallocs
	b.err.Deallocs = deallocs
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Violation creates a policy violation error carrying the violated channel
// names and the full measured delta.
func Violation(channels []string, allocs, reallocs, deallocs uint64) *Error {
	return &Error{
		Phase:    PhaseMeasure,
		Kind:     KindViolation,
		Channels: channels,
		Allocs:   allocs,
		Reallocs: reallocs,
		Deallocs: deallocs,
	}
}

// Exhausted creates a budget exhaustion error for a capped allocator
func Exhausted(size, remaining int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindExhausted,
		Detail: fmt.Sprintf("cannot allocate %d bytes (%d remaining in budget)", size, remaining),
	}
}

// DoubleEnd creates an error for a guard ended more than once
func DoubleEnd() *Error {
	return &Error{
		Phase:  PhaseMeasure,
		Kind:   KindDoubleEnd,
		Detail: "guard already ended",
	}
}

// AlreadyInstalled creates an error for a repeated Install call
func AlreadyInstalled() *Error {
	return &Error{
		Phase:  PhaseInstall,
		Kind:   KindAlreadyInstalled,
		Detail: "allocator proxy already installed",
	}
}

// MissingExport creates an error for a guest module without a usable
// allocation export.
func MissingExport(name string) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindMissingExport,
		Detail: fmt.Sprintf("guest does not export %q", name),
	}
}

// GuestTrap creates an error for a guest allocation call that trapped
func GuestTrap(fn string, cause error) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindGuestTrap,
		Detail: fmt.Sprintf("guest %s trapped", fn),
		Cause:  cause,
	}
}

// InvalidSize creates an error for an unusable size request
func InvalidSize(size int) *Error {
	return &Error{
		Phase:  PhaseAlloc,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("invalid allocation size %d", size),
	}
}
