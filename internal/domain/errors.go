package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is normally carried inside a ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError reports a single field that failed validation. It wraps
// a sentinel (usually ErrValidation) so callers can classify it with
// errors.Is while still learning which field was at fault.
type ValidationError struct {
	Field   string
	Message string
	err     error
}

// NewValidationError creates a ValidationError for the given field,
// wrapping err. Pass ErrValidation unless a more specific sentinel fits.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel so errors.Is(err, ErrValidation)
// holds even for errors built with a composite literal.
func (e *ValidationError) Unwrap() error {
	if e.err != nil {
		return e.err
	}
	return ErrValidation
}

// ValidationErrors aggregates field-level failures so an operation can
// report every offending field at once.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, ve := range e {
		errs[i] = ve
	}
	return errs
}

// Fields lists the offending field names in the order the checks ran.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, ve := range e {
		fields[i] = ve.Field
	}
	return fields
}
