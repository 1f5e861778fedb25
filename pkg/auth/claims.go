// Package auth provides JWT-based authentication. Tokens are issued
// and validated locally with an HMAC secret.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims represents the JWT claims structure. It embeds
// RegisteredClaims for standard JWT fields (sub, exp, iat) and adds
// the organization the user belongs to.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"oid,omitempty"`   // Organization UUID
	Email          string `json:"email,omitempty"` // User email address
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetOrganizationID extracts the organization ID from JWT claims in
// the context. Returns uuid.Nil if not authenticated.
func GetOrganizationID(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil || claims.OrganizationID == "" {
		return uuid.Nil
	}

	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return uuid.Nil
	}

	return orgID
}

// RequireOrganizationID extracts the organization ID from context and
// returns an error if it is missing or invalid.
func RequireOrganizationID(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}
	if claims.OrganizationID == "" {
		return uuid.Nil, fmt.Errorf("missing organization ID in JWT claims")
	}

	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid organization ID format: %w", err)
	}

	return orgID, nil
}
