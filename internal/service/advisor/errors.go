package advisor

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned when a newer request for the same user and
	// action started before this one finished. Its result is discarded.
	// API layer should map this to HTTP 409 Conflict.
	ErrSuperseded = errors.New("request superseded by a newer request")
)

// AdvisorError wraps failures of an advisor operation with the step that failed.
type AdvisorError struct {
	// Operation is the operation that failed (e.g., "geocode", "find_matches")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AdvisorError.
func (e *AdvisorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("advisor %s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("advisor %s: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AdvisorError) Unwrap() error {
	return e.Err
}

// NewAdvisorError creates a new AdvisorError.
func NewAdvisorError(operation, message string, err error) *AdvisorError {
	return &AdvisorError{Operation: operation, Message: message, Err: err}
}
