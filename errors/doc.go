// Package errors provides structured error types for the alloc-guard library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the offending per-channel
// counts for policy violations, and a cause chain for allocator failures.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMeasure, errors.KindViolation).
//		Channels("allocs", "deallocs").
//		Counts(3, 0, 1).
//		Detail("forbidden heap activity").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Violation(channels, allocs, reallocs, deallocs)
//	err := errors.Exhausted(size, budget)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
