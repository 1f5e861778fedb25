package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/audit"
	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
	"github.com/spincoach-ai/engine/pkg/services"
)

// RegisterRequest is the request body for organization sign-up.
type RegisterRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the authenticated identity.
type AuthResponse struct {
	Token        string               `json:"token"`
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization,omitempty"`
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	orgService services.OrganizationService
	users      repositories.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenService
	auditor    *audit.SecurityAuditor
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	orgService services.OrganizationService,
	users repositories.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		orgService: orgService,
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		auditor:    audit.NewSecurityAuditor(logger),
		logger:     logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
// Both routes run before any tenant exists, so they take the public
// database scope instead of the tenant one.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, publicScope TenantMiddleware) {
	mux.HandleFunc("POST /api/auth/register", publicScope(h.Register))
	mux.HandleFunc("POST /api/auth/login", publicScope(h.Login))
}

// Register handles POST /api/auth/register.
// Creates the organization, its first user, and the default scoring
// template, then issues a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	org, user, err := h.orgService.Register(r.Context(), req.OrganizationName, req.Email, req.Password)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "token_issue_failed", "Registration succeeded but login failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, AuthResponse{
		Token:        token,
		User:         user,
		Organization: org,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// A wrong email and a wrong password look identical to the caller.
	// The audit trail keeps the distinction.
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err == nil && !h.hasher.Verify(user.PasswordHash, req.Password) {
		h.auditor.LogLoginFailed(r.Context(), req.Email, "wrong_password")
		err = apperrors.ErrNotFound
	} else if err != nil {
		h.auditor.LogLoginFailed(r.Context(), req.Email, "unknown_email")
	}
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if !user.IsActive {
		if err := ErrorResponse(w, http.StatusForbidden, "inactive_user", "User account is disabled"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "token_issue_failed", "Login failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, AuthResponse{Token: token, User: user}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
