package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/services"
)

// TemplateHandler handles prompt template management.
type TemplateHandler struct {
	templates services.TemplateService
	logger    *zap.Logger
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(templates services.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// RegisterRoutes registers the template handler's routes on the given mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/templates",
		authMiddleware.RequireAuth(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET /api/templates",
		authMiddleware.RequireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("GET /api/templates/active",
		authMiddleware.RequireAuth(tenantMiddleware(h.GetActive)))
	mux.HandleFunc("GET /api/templates/{tmpl_id}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/templates/{tmpl_id}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Update)))
	mux.HandleFunc("POST /api/templates/{tmpl_id}/activate",
		authMiddleware.RequireAuth(tenantMiddleware(h.Activate)))
	mux.HandleFunc("DELETE /api/templates/{tmpl_id}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Delete)))
}

type templateRequest struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	SystemPrompt string `json:"system_prompt"`
	UserTemplate string `json:"user_template"`
	Activate     bool   `json:"activate"`
}

// Create handles POST /api/templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	tmpl := &models.PromptTemplate{
		OrganizationID: auth.GetOrganizationID(r.Context()),
		Name:           req.Name,
		Version:        req.Version,
		SystemPrompt:   req.SystemPrompt,
		UserTemplate:   req.UserTemplate,
	}
	if err := h.templates.Create(r.Context(), tmpl, req.Activate); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if templates == nil {
		templates = make([]*models.PromptTemplate, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: templates}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetActive handles GET /api/templates/active.
func (h *TemplateHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.GetActive(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/templates/{tmpl_id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	tmpl, err := h.templates.Get(r.Context(), auth.GetOrganizationID(r.Context()), templateID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/templates/{tmpl_id}.
// Activation state is not editable here; use the activate endpoint.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	orgID := auth.GetOrganizationID(r.Context())
	tmpl, err := h.templates.Get(r.Context(), orgID, templateID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if req.Name != "" {
		tmpl.Name = req.Name
	}
	if req.Version != "" {
		tmpl.Version = req.Version
	}
	if req.SystemPrompt != "" {
		tmpl.SystemPrompt = req.SystemPrompt
	}
	if req.UserTemplate != "" {
		tmpl.UserTemplate = req.UserTemplate
	}
	if err := h.templates.Update(r.Context(), tmpl); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Activate handles POST /api/templates/{tmpl_id}/activate.
func (h *TemplateHandler) Activate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.templates.Activate(r.Context(), auth.GetOrganizationID(r.Context()), templateID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/templates/{tmpl_id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.templates.Delete(r.Context(), auth.GetOrganizationID(r.Context()), templateID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
