package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spincoach-ai/engine/pkg/models"
)

func testUser() *models.User {
	return &models.User{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Email:          "rep@example.com",
	}
}

func TestIssueAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.OrganizationID.String(), claims.OrganizationID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}

func TestValidateRequest(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/transcripts", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, err := svc.ValidateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Email)
}

func TestValidateRequestMissingHeader(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	req, _ := http.NewRequest(http.MethodGet, "/api/transcripts", nil)
	_, err := svc.ValidateRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = svc.ValidateRequest(req)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, hasher.Verify(hash, "correct horse battery staple"))
	assert.False(t, hasher.Verify(hash, "wrong password"))

	_, err = hasher.Hash("")
	assert.Error(t, err)
}
