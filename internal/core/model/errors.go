package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData signals that no intake events were ever recorded. It is distinct
	// from a window that merely contains zero events.
	ErrNoData = errors.New("no intake events recorded")

	// ErrNotFound is returned by stores for unknown event ids.
	ErrNotFound = errors.New("intake not found")
)

// ValidationError rejects malformed input before any aggregation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreUnavailableError wraps a failure of the event store collaborator.
// Retry and backoff belong to the store, so callers only propagate it.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsStoreUnavailable reports whether err carries a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var s *StoreUnavailableError
	return errors.As(err, &s)
}
