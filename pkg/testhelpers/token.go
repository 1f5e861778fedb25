package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
)

// TestJWTSecret signs tokens issued by the test helpers. Handlers under
// test must validate with a TokenService built from the same secret.
const TestJWTSecret = "integration-test-signing-secret"

// NewTokenService returns a token service using the shared test secret.
func NewTokenService() *auth.TokenService {
	return auth.NewTokenService(TestJWTSecret, time.Hour)
}

// IssueToken creates a signed access token for a user in the given
// organization.
func IssueToken(t *testing.T, orgID uuid.UUID) string {
	t.Helper()

	token, err := NewTokenService().Issue(&models.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          "test@example.com",
	})
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}
	return token
}

// BearerToken returns the token with the "Bearer " prefix for the
// Authorization header.
func BearerToken(t *testing.T, orgID uuid.UUID) string {
	return "Bearer " + IssueToken(t, orgID)
}
