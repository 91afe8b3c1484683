// Package apperror defines the error kinds the rest of the application speaks.
//
// Services return these; the HTTP layer maps them to status codes. Checking is
// always done with errors.Is against the sentinel values, which works through
// any number of fmt.Errorf("%w") wrapping layers because AppError implements
// Unwrap.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrIO marks file-system failures. A write failure during an upload is
	// fatal for the enclosing operation; a removal failure during cleanup is
	// logged and swallowed by the caller instead of being returned.
	ErrIO = errors.New("io failure")
)

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // human-readable, safe to show to the user
	Field   string // optional: input field that caused a validation failure
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a duplicate category name.
func Conflict(resource, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, value),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// IO wraps a file-system error. The underlying cause stays reachable in the
// message and errors.Is(err, ErrIO) identifies the kind.
func IO(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrIO,
		Message: fmt.Sprintf("%s: %v", op, cause),
	}
}
