package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/services"
)

// OrganizationHandler handles requests about the caller's own organization.
type OrganizationHandler struct {
	orgService services.OrganizationService
	logger     *zap.Logger
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(orgService services.OrganizationService, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, logger: logger}
}

// RegisterRoutes registers the organization handler's routes on the given mux.
func (h *OrganizationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("GET /api/organization",
		authMiddleware.RequireAuth(tenantMiddleware(h.Get)))
	mux.HandleFunc("PATCH /api/organization",
		authMiddleware.RequireAuth(tenantMiddleware(h.Update)))
}

// Get handles GET /api/organization.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := auth.GetOrganizationID(r.Context())

	org, err := h.orgService.Get(r.Context(), orgID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: org}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type updateOrganizationRequest struct {
	Name string `json:"name"`
}

// Update handles PATCH /api/organization.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := auth.GetOrganizationID(r.Context())

	var req updateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Organization name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	org, err := h.orgService.Get(r.Context(), orgID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	org.Name = req.Name
	if err := h.orgService.Update(r.Context(), org); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: org}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
