package core

import (
	"errors"
	"fmt"
)

// ValidationError describes one recoverable reason a command cannot proceed,
// tied to the input field it relates to. Commands collect every failing rule
// and return them together, so a caller can fix all problems in one round trip.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Result is the outcome of a command for every recoverable path.
// A command either succeeds with a value or fails with one or more
// validation errors; it never does both. Missing primary aggregates and
// infrastructure failures travel on the ordinary error return instead,
// so the boundary can keep 404/500 distinct from 400.
type Result[T any] struct {
	Value   T                 `json:"value,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// IsSuccess reports whether the command executed its business logic.
func (r Result[T]) IsSuccess() bool {
	return len(r.Errors) == 0
}

// Ok returns a successful Result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail returns a failed Result carrying the collected validation errors.
func Fail[T any](errs []ValidationError) Result[T] {
	return Result[T]{Message: "validation failed", Errors: errs}
}

// fieldErrorf builds a ValidationError for field with a formatted message.
func fieldErrorf(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals that the primary aggregate a command addresses by id
// does not exist. It is a fatal precondition: it is returned on the error
// path before any mutation is attempted and is never mixed into a
// validation-error list. The web adapter maps it to HTTP 404.
type NotFoundError struct {
	Kind string // "batch" or "product"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
