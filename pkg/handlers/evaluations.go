package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/services"
)

// EvaluationHandler handles labeled datasets and evaluation runs.
type EvaluationHandler struct {
	evaluations services.EvaluationService
	logger      *zap.Logger
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(evaluations services.EvaluationService, logger *zap.Logger) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, logger: logger}
}

// RegisterRoutes registers the evaluation handler's routes on the given mux.
func (h *EvaluationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/datasets",
		authMiddleware.RequireAuth(tenantMiddleware(h.CreateDataset)))
	mux.HandleFunc("GET /api/datasets",
		authMiddleware.RequireAuth(tenantMiddleware(h.ListDatasets)))
	mux.HandleFunc("GET /api/datasets/{did}",
		authMiddleware.RequireAuth(tenantMiddleware(h.GetDataset)))
	mux.HandleFunc("DELETE /api/datasets/{did}",
		authMiddleware.RequireAuth(tenantMiddleware(h.DeleteDataset)))

	mux.HandleFunc("POST /api/evaluations",
		authMiddleware.RequireAuth(tenantMiddleware(h.Run)))
	mux.HandleFunc("GET /api/evaluations/{run_id}",
		authMiddleware.RequireAuth(tenantMiddleware(h.GetRun)))
	mux.HandleFunc("GET /api/templates/{tmpl_id}/evaluations",
		authMiddleware.RequireAuth(tenantMiddleware(h.ListRuns)))
}

type datasetExampleRequest struct {
	Transcript string          `json:"transcript"`
	Labels     models.ScoreMap `json:"labels"`
}

type createDatasetRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Examples    []datasetExampleRequest `json:"examples"`
}

// CreateDataset handles POST /api/datasets.
func (h *EvaluationHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	dataset := &models.EvaluationDataset{
		OrganizationID: auth.GetOrganizationID(r.Context()),
		Name:           req.Name,
		Description:    req.Description,
	}
	examples := make([]*models.EvaluationExample, len(req.Examples))
	for i, example := range req.Examples {
		examples[i] = &models.EvaluationExample{
			Transcript: example.Transcript,
			Labels:     example.Labels,
		}
	}

	if err := h.evaluations.CreateDataset(r.Context(), dataset, examples); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: dataset}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListDatasets handles GET /api/datasets.
func (h *EvaluationHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.evaluations.ListDatasets(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if datasets == nil {
		datasets = make([]*models.EvaluationDataset, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: datasets}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetDataset handles GET /api/datasets/{did}.
func (h *EvaluationHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	dataset, err := h.evaluations.GetDataset(r.Context(), auth.GetOrganizationID(r.Context()), datasetID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: dataset}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// DeleteDataset handles DELETE /api/datasets/{did}.
func (h *EvaluationHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := ParseDatasetID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.evaluations.DeleteDataset(r.Context(), auth.GetOrganizationID(r.Context()), datasetID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type runRequest struct {
	TemplateID     uuid.UUID `json:"template_id"`
	DatasetID      uuid.UUID `json:"dataset_id"`
	ExperimentName string    `json:"experiment_name,omitempty"`
}

// Run handles POST /api/evaluations.
// Runs synchronously; the response carries the finished run with its
// agreement metrics.
func (h *EvaluationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.TemplateID == uuid.Nil || req.DatasetID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_ids", "template_id and dataset_id are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	run, err := h.evaluations.Run(r.Context(), auth.GetOrganizationID(r.Context()), req.TemplateID, req.DatasetID, req.ExperimentName)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: run}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetRun handles GET /api/evaluations/{run_id}.
func (h *EvaluationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := ParseRunID(w, r, h.logger)
	if !ok {
		return
	}

	run, err := h.evaluations.GetRun(r.Context(), runID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: run}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListRuns handles GET /api/templates/{tmpl_id}/evaluations.
func (h *EvaluationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	runs, err := h.evaluations.ListRuns(r.Context(), templateID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if runs == nil {
		runs = make([]*models.EvaluationRun, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: runs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
