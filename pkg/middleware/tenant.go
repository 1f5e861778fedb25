package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/database"
)

// TenantScope returns middleware that binds the request to its
// organization's database scope. Requires auth middleware to have run
// first so the organization ID is in the claims. The scope is released
// when the handler returns.
func TenantScope(db *database.DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			orgID, err := auth.RequireOrganizationID(r.Context())
			if err != nil {
				writeScopeError(w, http.StatusUnauthorized, "missing_organization", "No organization in token")
				return
			}

			scope, err := db.WithTenant(r.Context(), orgID)
			if err != nil {
				logger.Error("failed to acquire tenant scope",
					zap.String("organization_id", orgID.String()),
					zap.Error(err))
				writeScopeError(w, http.StatusServiceUnavailable, "database_unavailable", "Database connection failed")
				return
			}
			defer scope.Close()

			next(w, r.WithContext(database.SetTenantScope(r.Context(), scope)))
		}
	}
}

// PublicScope returns middleware that binds the request to an
// unscoped database connection. Registration and login run here,
// before any tenant exists.
func PublicScope(db *database.DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			scope, err := db.WithoutTenant(r.Context())
			if err != nil {
				logger.Error("failed to acquire database connection", zap.Error(err))
				writeScopeError(w, http.StatusServiceUnavailable, "database_unavailable", "Database connection failed")
				return
			}
			defer scope.Close()

			next(w, r.WithContext(database.SetTenantScope(r.Context(), scope)))
		}
	}
}

func writeScopeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
