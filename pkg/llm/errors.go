package llm

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindUnknown   ErrorKind = "unknown"
)

// Error represents a structured provider error with classification.
// The scoring pipeline never retries these internally; callers decide
// what to do with retryable kinds.
type Error struct {
	Kind       ErrorKind // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Kind))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured provider error.
func NewError(kind ErrorKind, message string, retryable bool, cause error) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// This consolidates error classification across provider SDKs.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	// Extract HTTP status code from error string
	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	// Authentication errors (not retryable)
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "permission") {
		provErr = NewError(ErrorKindAuth, "authentication failed", false, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Rate limiting (retryable after backoff)
	if strings.Contains(errStr, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "overloaded") {
		provErr = NewError(ErrorKindRateLimit, "rate limited", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// Timeout and deadline exceeded (retryable)
	if strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") {
		provErr = NewError(ErrorKindTimeout, "request timed out", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	// 5xx server errors (retryable)
	if statusCode >= 500 {
		provErr = NewError(ErrorKindUnknown, "server error", true, err)
		provErr.StatusCode = statusCode
		return provErr
	}

	provErr = NewError(ErrorKindUnknown, "provider error", false, err)
	provErr.StatusCode = statusCode
	return provErr
}

// IsRetryable returns true if the error is a retryable provider error.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// GetErrorKind extracts the ErrorKind from an error.
func GetErrorKind(err error) ErrorKind {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Kind
	}
	return ErrorKindUnknown
}

// previewLimit bounds how much raw model output a MalformedOutputError
// carries for diagnostics.
const previewLimit = 120

// MalformedOutputError indicates the provider returned text that could
// not be parsed as JSON even after fence stripping. It carries only a
// bounded preview of the raw text, never the full response.
type MalformedOutputError struct {
	Preview string
	Cause   error
}

// Error implements the error interface.
func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output (preview: %q): %v", e.Preview, e.Cause)
	}
	return fmt.Sprintf("malformed model output (preview: %q)", e.Preview)
}

// Unwrap returns the underlying parse error.
func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// newMalformedOutputError builds a MalformedOutputError with the raw
// text truncated to the preview limit. The cut backs up to a rune
// boundary so the preview is always valid UTF-8.
func newMalformedOutputError(raw string, cause error) *MalformedOutputError {
	preview := raw
	if len(preview) > previewLimit {
		cut := previewLimit
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return &MalformedOutputError{Preview: preview, Cause: cause}
}

// IsMalformedOutput reports whether err is a MalformedOutputError.
func IsMalformedOutput(err error) bool {
	var malformed *MalformedOutputError
	return errors.As(err, &malformed)
}
