// Package errors provides structured error types for the sigbridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the port involved, a detail message and
// a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBind, errors.KindOutOfBounds).
//		Port("count").
//		Detail("offset %d past end of model memory (%d bytes)", off, size).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseBind, "port global", "clk")
//	err := errors.Closed("handle")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
