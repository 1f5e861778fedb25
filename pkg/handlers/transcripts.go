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

// TranscriptHandler handles transcript ingestion and assessment.
type TranscriptHandler struct {
	transcripts services.TranscriptService
	logger      *zap.Logger
}

// NewTranscriptHandler creates a new transcript handler.
func NewTranscriptHandler(transcripts services.TranscriptService, logger *zap.Logger) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts, logger: logger}
}

// RegisterRoutes registers the transcript handler's routes on the given mux.
func (h *TranscriptHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/transcripts",
		authMiddleware.RequireAuth(tenantMiddleware(h.Ingest)))
	mux.HandleFunc("GET /api/transcripts",
		authMiddleware.RequireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("GET /api/transcripts/{tid}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Get)))
	mux.HandleFunc("GET /api/transcripts/{tid}/assessments",
		authMiddleware.RequireAuth(tenantMiddleware(h.ListAssessments)))
	mux.HandleFunc("POST /api/assess",
		authMiddleware.RequireAuth(tenantMiddleware(h.Assess)))
}

type transcriptRequest struct {
	Content          string         `json:"content"`
	RepresentativeID *uuid.UUID     `json:"representative_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

func (req *transcriptRequest) toModel(orgID uuid.UUID) *models.Transcript {
	return &models.Transcript{
		OrganizationID:   orgID,
		RepresentativeID: req.RepresentativeID,
		Content:          req.Content,
		Metadata:         req.Metadata,
	}
}

// Ingest handles POST /api/transcripts.
// Stores the transcript without scoring it.
func (h *TranscriptHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	transcript := req.toModel(auth.GetOrganizationID(r.Context()))
	if err := h.transcripts.Ingest(r.Context(), transcript); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: transcript}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AssessResponse bundles the stored transcript with its assessment.
type AssessResponse struct {
	Transcript *models.Transcript `json:"transcript"`
	Assessment *models.Assessment `json:"assessment"`
}

// Assess handles POST /api/assess.
// Stores the transcript, scores it with the organization's active
// template, and persists the assessment. A failure at any stage rolls
// the transcript back.
func (h *TranscriptHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	transcript := req.toModel(auth.GetOrganizationID(r.Context()))
	assessment, err := h.transcripts.Assess(r.Context(), transcript)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    AssessResponse{Transcript: transcript, Assessment: assessment},
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/transcripts.
func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	transcripts, err := h.transcripts.List(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if transcripts == nil {
		transcripts = make([]*models.Transcript, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: transcripts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/transcripts/{tid}.
func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	transcriptID, ok := ParseTranscriptID(w, r, h.logger)
	if !ok {
		return
	}

	transcript, err := h.transcripts.Get(r.Context(), auth.GetOrganizationID(r.Context()), transcriptID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: transcript}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListAssessments handles GET /api/transcripts/{tid}/assessments.
func (h *TranscriptHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	transcriptID, ok := ParseTranscriptID(w, r, h.logger)
	if !ok {
		return
	}

	assessments, err := h.transcripts.ListAssessments(r.Context(), auth.GetOrganizationID(r.Context()), transcriptID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if assessments == nil {
		assessments = make([]*models.Assessment, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: assessments}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
