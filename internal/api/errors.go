package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bridgehead/bridgehead-api/internal/api/shared"
	"github.com/bridgehead/bridgehead-api/internal/domain"
	"github.com/bridgehead/bridgehead-api/internal/generation"
	"github.com/bridgehead/bridgehead-api/internal/service/advisor"
	"github.com/bridgehead/bridgehead-api/internal/service/auth"
	"github.com/bridgehead/bridgehead-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// Client-facing messages for upstream AI failures.
const (
	MsgAIUnavailable    = "The AI service is currently unavailable. Please try again later."
	MsgAIMisunderstood  = "The AI service is having trouble understanding this request."
	MsgAIContentBlocked = "The request was blocked by the AI service's content filters."
	MsgUnexpected       = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrEmptyInput),
		errors.Is(err, store.ErrInvalidQuery):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, advisor.ErrSuperseded):
		return http.StatusConflict

	// Upstream AI errors
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusBadGateway
	case errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	case errors.Is(err, generation.ErrEmptyInput):
		return "Request input cannot be empty"
	case errors.Is(err, store.ErrInvalidQuery):
		return "Invalid search parameters"

	case errors.Is(err, store.ErrDemandNotFound):
		return "One or more demand posts were not found"
	case errors.Is(err, store.ErrRentalNotFound):
		return "One or more rental posts were not found"
	case errors.Is(err, store.ErrNotFound):
		return "Post not found"

	case errors.Is(err, advisor.ErrSuperseded):
		return "Request superseded by a newer request"

	case errors.Is(err, generation.ErrContentBlocked):
		return MsgAIContentBlocked
	case errors.Is(err, generation.ErrInvalidResponse):
		return MsgAIMisunderstood
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrInvalidConfig):
		return MsgAIUnavailable
	case errors.Is(err, store.ErrUnavailable):
		return "Post data is currently unavailable"

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the status code and safe message for err and logs the
// redacted details. fallbackMessage replaces the generic message for errors
// that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict || status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response describing the first invalid field.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// SanitizeValidationError turns a validator error into a user-friendly message
// naming the JSON-facing field and the failed rule.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gte", "lte", "gt", "lt":
		return "out of range"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
