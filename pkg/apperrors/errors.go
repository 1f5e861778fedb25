// Package apperrors defines sentinel errors shared across layers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrNoActiveTemplate   = errors.New("no active prompt template for organization")
	ErrNoCredential       = errors.New("no active credential for provider")
	ErrInactiveOrg        = errors.New("organization is inactive")
	ErrInvalidProvider    = errors.New("unsupported llm provider")
	ErrMissingPlaceholder = errors.New("user template is missing the {transcript} placeholder")
)

// ValidationError reports a schema violation in a parsed LLM
// assessment, naming the offending field. Validation is all-or-nothing;
// the first violation rejects the whole artifact.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
