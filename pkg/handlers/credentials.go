package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/services"
)

// CredentialHandler handles provider credential management. API keys
// never appear in responses; only masked forms do.
type CredentialHandler struct {
	credentials services.CredentialService
	logger      *zap.Logger
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(credentials services.CredentialService, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, logger: logger}
}

// RegisterRoutes registers the credential handler's routes on the given mux.
func (h *CredentialHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/credentials",
		authMiddleware.RequireAuth(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET /api/credentials",
		authMiddleware.RequireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("PUT /api/credentials/{provider}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Rotate)))
	mux.HandleFunc("DELETE /api/credentials/{cid}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Deactivate)))
}

type credentialRequest struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model,omitempty"`
}

// Create handles POST /api/credentials.
func (h *CredentialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	provider, err := models.ParseProvider(req.Provider)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_provider", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	masked, err := h.credentials.Create(r.Context(), auth.GetOrganizationID(r.Context()), provider, req.APIKey, req.DefaultModel)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: masked}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/credentials.
func (h *CredentialHandler) List(w http.ResponseWriter, r *http.Request) {
	masked, err := h.credentials.List(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if masked == nil {
		masked = make([]*services.MaskedCredential, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: masked}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type rotateRequest struct {
	APIKey       string `json:"api_key"`
	DefaultModel string `json:"default_model,omitempty"`
}

// Rotate handles PUT /api/credentials/{provider}.
// Replaces the active key for a provider in place.
func (h *CredentialHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	provider, err := models.ParseProvider(r.PathValue("provider"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_provider", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.credentials.Rotate(r.Context(), auth.GetOrganizationID(r.Context()), provider, req.APIKey, req.DefaultModel); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Deactivate handles DELETE /api/credentials/{cid}.
func (h *CredentialHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	credentialID, ok := ParseCredentialID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.credentials.Deactivate(r.Context(), auth.GetOrganizationID(r.Context()), credentialID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
