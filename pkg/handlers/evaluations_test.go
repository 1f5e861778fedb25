package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
)

func TestEvaluationHandler_Run_Success(t *testing.T) {
	macro := 0.91
	service := &mockEvaluationService{
		run: &models.EvaluationRun{
			ID:            uuid.New(),
			NumExamples:   10,
			MacroPearsonR: &macro,
		},
	}
	handler := NewEvaluationHandler(service, zap.NewNop())

	body := strings.NewReader(`{"template_id": "` + uuid.NewString() + `", "dataset_id": "` + uuid.NewString() + `", "experiment_name": "v2-vs-golden"}`)
	req := authedRequest(http.MethodPost, "/api/evaluations", body, uuid.New())
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.EvaluationRun `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.NumExamples != 10 {
		t.Errorf("expected 10 examples, got %d", resp.Data.NumExamples)
	}
	if resp.Data.MacroPearsonR == nil || *resp.Data.MacroPearsonR != 0.91 {
		t.Errorf("expected macro pearson 0.91, got %v", resp.Data.MacroPearsonR)
	}
}

func TestEvaluationHandler_Run_MissingIDs(t *testing.T) {
	handler := NewEvaluationHandler(&mockEvaluationService{}, zap.NewNop())

	body := strings.NewReader(`{"experiment_name": "nameless"}`)
	req := authedRequest(http.MethodPost, "/api/evaluations", body, uuid.New())
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestEvaluationHandler_CreateDataset(t *testing.T) {
	handler := NewEvaluationHandler(&mockEvaluationService{}, zap.NewNop())

	body := strings.NewReader(`{
		"name": "golden-set",
		"examples": [
			{"transcript": "rep: hi", "labels": {"situation": 3, "problem": 3, "implication": 3, "need_payoff": 3, "flow": 3, "tone": 3, "engagement": 3}}
		]
	}`)
	req := authedRequest(http.MethodPost, "/api/datasets", body, uuid.New())
	rec := httptest.NewRecorder()

	handler.CreateDataset(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.EvaluationDataset `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Data.NumExamples != 1 {
		t.Errorf("expected 1 example, got %d", resp.Data.NumExamples)
	}
}

// Routing test: unauthenticated requests never reach the handler.
func TestEvaluationRoutes_RequireAuth(t *testing.T) {
	mux := http.NewServeMux()
	tokens := auth.NewTokenService("routing-test-secret", time.Hour)
	authMW := auth.NewMiddleware(tokens, zap.NewNop())

	handler := NewEvaluationHandler(&mockEvaluationService{}, zap.NewNop())
	handler.RegisterRoutes(mux, authMW, noopTenant)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestEvaluationRoutes_AuthedPassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	tokens := auth.NewTokenService("routing-test-secret", time.Hour)
	authMW := auth.NewMiddleware(tokens, zap.NewNop())

	handler := NewEvaluationHandler(&mockEvaluationService{}, zap.NewNop())
	handler.RegisterRoutes(mux, authMW, noopTenant)

	token, err := tokens.Issue(&models.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Email:          "owner@acme.test",
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
