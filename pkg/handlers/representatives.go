package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// RepresentativeHandler handles sales representative CRUD.
type RepresentativeHandler struct {
	reps   repositories.RepresentativeRepository
	logger *zap.Logger
}

// NewRepresentativeHandler creates a new representative handler.
func NewRepresentativeHandler(reps repositories.RepresentativeRepository, logger *zap.Logger) *RepresentativeHandler {
	return &RepresentativeHandler{reps: reps, logger: logger}
}

// RegisterRoutes registers the representative handler's routes on the given mux.
func (h *RepresentativeHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/representatives",
		authMiddleware.RequireAuth(tenantMiddleware(h.Create)))
	mux.HandleFunc("GET /api/representatives",
		authMiddleware.RequireAuth(tenantMiddleware(h.List)))
	mux.HandleFunc("GET /api/representatives/{rid}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/representatives/{rid}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Update)))
	mux.HandleFunc("DELETE /api/representatives/{rid}",
		authMiddleware.RequireAuth(tenantMiddleware(h.Delete)))
}

type representativeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

// Create handles POST /api/representatives.
func (h *RepresentativeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req representativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Representative name is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rep := &models.Representative{
		OrganizationID: auth.GetOrganizationID(r.Context()),
		Name:           req.Name,
		Email:          req.Email,
		Team:           req.Team,
	}
	if err := h.reps.Create(r.Context(), rep); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: rep}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/representatives.
func (h *RepresentativeHandler) List(w http.ResponseWriter, r *http.Request) {
	reps, err := h.reps.List(r.Context(), auth.GetOrganizationID(r.Context()))
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}
	if reps == nil {
		reps = make([]*models.Representative, 0)
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: reps}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/representatives/{rid}.
func (h *RepresentativeHandler) Get(w http.ResponseWriter, r *http.Request) {
	repID, ok := ParseRepresentativeID(w, r, h.logger)
	if !ok {
		return
	}

	rep, err := h.reps.GetByID(r.Context(), auth.GetOrganizationID(r.Context()), repID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rep}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/representatives/{rid}.
func (h *RepresentativeHandler) Update(w http.ResponseWriter, r *http.Request) {
	repID, ok := ParseRepresentativeID(w, r, h.logger)
	if !ok {
		return
	}

	var req representativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	orgID := auth.GetOrganizationID(r.Context())
	rep, err := h.reps.GetByID(r.Context(), orgID, repID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if req.Name != "" {
		rep.Name = req.Name
	}
	rep.Email = req.Email
	rep.Team = req.Team
	if err := h.reps.Update(r.Context(), rep); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rep}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/representatives/{rid}.
func (h *RepresentativeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	repID, ok := ParseRepresentativeID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.reps.Delete(r.Context(), auth.GetOrganizationID(r.Context()), repID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
