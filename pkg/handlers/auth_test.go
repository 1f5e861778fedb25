package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
)

func newAuthHandler(orgService *mockOrganizationService, users *mockUserRepo) (*AuthHandler, *auth.TokenService) {
	tokens := auth.NewTokenService("test-secret-for-auth-handler", time.Hour)
	handler := NewAuthHandler(orgService, users, auth.NewPasswordHasher(), tokens, zap.NewNop())
	return handler, tokens
}

func TestAuthHandler_Register_Success(t *testing.T) {
	orgID := uuid.New()
	orgService := &mockOrganizationService{
		org:  &models.Organization{ID: orgID, Name: "Acme", IsActive: true},
		user: &models.User{ID: uuid.New(), OrganizationID: orgID, Email: "owner@acme.test", IsActive: true},
	}
	handler, tokens := newAuthHandler(orgService, &mockUserRepo{})

	body := strings.NewReader(`{"organization_name": "Acme", "email": "owner@acme.test", "password": "long-enough-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	claims, err := tokens.Validate(resp.Token)
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.OrganizationID != orgID.String() {
		t.Errorf("expected org %s in claims, got %s", orgID, claims.OrganizationID)
	}
}

func TestAuthHandler_Register_DuplicateName(t *testing.T) {
	handler, _ := newAuthHandler(&mockOrganizationService{err: apperrors.ErrConflict}, &mockUserRepo{})

	body := strings.NewReader(`{"organization_name": "Acme", "email": "owner@acme.test", "password": "pw-long-enough"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	hasher := auth.NewPasswordHasher()
	hash, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatal(err)
	}
	users := &mockUserRepo{
		user: &models.User{
			ID:             uuid.New(),
			OrganizationID: uuid.New(),
			Email:          "owner@acme.test",
			PasswordHash:   hash,
			IsActive:       true,
		},
	}
	handler, _ := newAuthHandler(&mockOrganizationService{}, users)

	body := strings.NewReader(`{"email": "owner@acme.test", "password": "correct-horse-battery"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	hasher := auth.NewPasswordHasher()
	hash, err := hasher.Hash("the-real-password")
	if err != nil {
		t.Fatal(err)
	}
	users := &mockUserRepo{
		user: &models.User{Email: "owner@acme.test", PasswordHash: hash, IsActive: true},
	}
	handler, _ := newAuthHandler(&mockOrganizationService{}, users)

	body := strings.NewReader(`{"email": "owner@acme.test", "password": "a-guess"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	handler, _ := newAuthHandler(&mockOrganizationService{}, &mockUserRepo{err: apperrors.ErrNotFound})

	body := strings.NewReader(`{"email": "nobody@acme.test", "password": "whatever"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	// Unknown email is indistinguishable from a wrong password.
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}
