package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the store, the timer and the aggregation engine.
// Callers match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrStorageFailure = errors.New("storage failure")
	ErrValidation     = errors.New("validation error")
)

// NotFound reports an identifier-addressed operation on a missing record or profile.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidState reports a transition attempted from a state that forbids it.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// StorageFailure wraps a backend read or write error.
func StorageFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// ValidationError wraps a malformed field error.
func ValidationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Invalid builds a ValidationError from a message.
func Invalid(format string, args ...any) error {
	return ValidationError(fmt.Errorf(format, args...))
}
