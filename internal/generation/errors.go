package generation

import "errors"

// Common errors returned by the generation package and its implementations.
var (
	// ErrGenerationFailed is returned when the upstream service rejects a request permanently.
	ErrGenerationFailed = errors.New("language model request failed")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyInput is returned when a prompt builder receives no usable input.
	ErrEmptyInput = errors.New("prompt input cannot be empty")
)
