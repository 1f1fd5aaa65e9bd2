// Package common defines sentinel errors and small helpers shared by the
// ledger, its persistence layer and the CLI. Callers should use errors.Is to
// match these values; operations wrap them with context.
package common

import "errors"

var (
	// Ledger errors.
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyExists     = errors.New("already exists")

	// Session errors.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid token")

	// Persistence errors.
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
	ErrCorruptDocument   = errors.New("corrupt document")
)

// FieldError describes one rejected input field. It matches ErrValidation
// through errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Invalid is a shorthand for building a *FieldError.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
