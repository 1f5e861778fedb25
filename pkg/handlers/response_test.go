package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/llm"
)

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := ErrorResponse(rec, http.StatusNotFound, "not_found", "no such thing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if body["error"] != "not_found" {
		t.Errorf("expected error 'not_found', got %q", body["error"])
	}
}

func TestServiceErrorMapping(t *testing.T) {
	_, malformedErr := llm.ExtractJSON("definitely not json")
	if malformedErr == nil {
		t.Fatal("expected malformed output error")
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"no active template", apperrors.ErrNoActiveTemplate, http.StatusConflict, "no_active_template"},
		{"no credential", apperrors.ErrNoCredential, http.StatusConflict, "no_credential"},
		{"inactive org", apperrors.ErrInactiveOrg, http.StatusForbidden, "inactive_organization"},
		{"missing placeholder", apperrors.ErrMissingPlaceholder, http.StatusBadRequest, "missing_placeholder"},
		{"validation", apperrors.NewValidationError("scores.flow", "must be an integer"), http.StatusUnprocessableEntity, "validation_failed"},
		{"malformed output", malformedErr, http.StatusBadGateway, "malformed_model_output"},
		{"provider error", llm.NewError(llm.ErrorKindRateLimit, "rate limited", true, nil), http.StatusBadGateway, "provider_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ServiceError(rec, tt.err, zap.NewNop())

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, body["error"])
			}
		})
	}
}
