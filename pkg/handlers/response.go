// Package handlers exposes the engine's HTTP API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/llm"
)

// ApiResponse is the standard success envelope.
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceError maps a service-layer error onto an HTTP error response.
// Provider and model-output failures map to 502 so clients can tell an
// upstream problem from a bad request.
func ServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	statusCode := http.StatusInternalServerError
	errorCode := "internal_error"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		statusCode, errorCode = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrConflict):
		statusCode, errorCode = http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrNoActiveTemplate):
		statusCode, errorCode = http.StatusConflict, "no_active_template"
	case errors.Is(err, apperrors.ErrNoCredential):
		statusCode, errorCode = http.StatusConflict, "no_credential"
	case errors.Is(err, apperrors.ErrInactiveOrg):
		statusCode, errorCode = http.StatusForbidden, "inactive_organization"
	case errors.Is(err, apperrors.ErrMissingPlaceholder):
		statusCode, errorCode = http.StatusBadRequest, "missing_placeholder"
	case errors.Is(err, apperrors.ErrInvalidProvider):
		statusCode, errorCode = http.StatusBadRequest, "invalid_provider"
	case llm.IsMalformedOutput(err):
		statusCode, errorCode = http.StatusBadGateway, "malformed_model_output"
	case apperrors.IsValidationError(err):
		statusCode, errorCode = http.StatusUnprocessableEntity, "validation_failed"
	default:
		var provErr *llm.Error
		if errors.As(err, &provErr) {
			statusCode, errorCode = http.StatusBadGateway, "provider_error"
		}
	}

	if statusCode == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	if writeErr := ErrorResponse(w, statusCode, errorCode, err.Error()); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
