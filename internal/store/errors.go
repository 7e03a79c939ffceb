package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidQuery is returned when query arguments are unusable, such as
	// out-of-range coordinates for a nearby search.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnavailable is returned when the backing store cannot serve reads,
	// for example because the schema has not been migrated.
	ErrUnavailable = errors.New("store unavailable")

	// ErrDemandNotFound indicates that one or more requested demands do not exist.
	ErrDemandNotFound = fmt.Errorf("%w: demand", ErrNotFound)

	// ErrRentalNotFound indicates that one or more requested rentals do not exist.
	ErrRentalNotFound = fmt.Errorf("%w: rental", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "demand", "rental")
	Operation string // The operation that failed (e.g., "list_near")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
