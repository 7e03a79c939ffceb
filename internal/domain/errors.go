package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the root of all domain validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrEmptyPostID is returned when a post has no identifier.
	ErrEmptyPostID = errors.New("post ID cannot be empty")

	// ErrEmptyTitle is returned when a post has no title.
	ErrEmptyTitle = errors.New("post title cannot be empty")

	// ErrUnauthorized is returned when no authenticated user is present.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field. It unwraps to the underlying
// cause so callers can match with errors.Is against ErrValidation and friends.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field with the given message.
// If err is nil the error unwraps to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError regardless of its cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
