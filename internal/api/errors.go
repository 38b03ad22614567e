package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dfcarvalho/tarefas-api/internal/api/shared"
	"github.com/dfcarvalho/tarefas-api/internal/domain"
	"github.com/dfcarvalho/tarefas-api/internal/service"
	"github.com/dfcarvalho/tarefas-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var fieldErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &fieldErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	var fieldErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Task not found"

	// Validation errors carry field names that are safe to surface
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.As(err, &fieldErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError returns a client-safe description of a validation
// failure, naming the offending field(s) without echoing internal details.
func SanitizeValidationError(err error) string {
	// Domain validation errors already carry field-and-message pairs that
	// are safe to surface. Check the aggregate form first so multi-field
	// failures report every offending field.
	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		return validationErrs.Error()
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	// Struct-tag validation errors from the request DTOs.
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s: %s",
				strings.ToLower(fieldErr.Field()),
				getValidationTagMessage(fieldErr.Tag())))
		}
		return strings.Join(parts, "; ")
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "min":
		return "cannot be empty"
	case "max":
		return "too long"
	case "oneof":
		return "must be one of aberto, fazendo or finalizado"
	default:
		return "validation failed"
	}
}

// decodeErrorMessage translates JSON decoding failures into client-safe
// messages. Unknown fields are called out by name so clients can fix the
// payload; everything else collapses to a generic format error.
func decodeErrorMessage(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		return "Unknown field " + strings.TrimPrefix(msg, "json: unknown field ")
	}
	return "Invalid request format"
}

// HandleAPIError maps the error to an HTTP status code and writes a sanitized
// JSON error response. fallbackMessage, when non-empty, replaces the generic
// message for unclassified (5xx) errors so callers can provide operation
// context without leaking internals.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)

	if statusCode >= http.StatusInternalServerError && fallbackMessage != "" {
		safeMessage = fallbackMessage
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}
