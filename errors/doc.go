// Package errors provides structured error types for the corert metadata library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the metadata table involved, the offending
// handle or row, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindInvalidHandle).
//		Table("Field").
//		Handle(uint32(h)).
//		Detail("row index exceeds table size").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidHandle(errors.PhaseResolve, "Field", uint32(h))
//	err := errors.OutOfBounds(errors.PhaseParse, "TypeDef", 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
