package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// OrganizationService manages tenants and their initial setup.
type OrganizationService interface {
	// Register creates an organization with its first user and
	// provisions the default v0 scoring template.
	Register(ctx context.Context, orgName, email, password string) (*models.Organization, *models.User, error)

	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// organizationService implements OrganizationService.
type organizationService struct {
	orgs      repositories.OrganizationRepository
	users     repositories.UserRepository
	templates TemplateService
	hasher    *auth.PasswordHasher
	logger    *zap.Logger
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(
	orgs repositories.OrganizationRepository,
	users repositories.UserRepository,
	templates TemplateService,
	hasher *auth.PasswordHasher,
	logger *zap.Logger,
) OrganizationService {
	return &organizationService{
		orgs:      orgs,
		users:     users,
		templates: templates,
		hasher:    hasher,
		logger:    logger,
	}
}

func (s *organizationService) Register(ctx context.Context, orgName, email, password string) (*models.Organization, *models.User, error) {
	orgName = strings.TrimSpace(orgName)
	email = strings.TrimSpace(email)
	if orgName == "" {
		return nil, nil, fmt.Errorf("organization name is required")
	}
	if email == "" {
		return nil, nil, fmt.Errorf("email is required")
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, err
	}

	org := &models.Organization{
		Name:     orgName,
		IsActive: true,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, nil, err
	}

	user := &models.User{
		OrganizationID: org.ID,
		Email:          email,
		PasswordHash:   passwordHash,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.rollbackRegistration(ctx, org.ID)
		return nil, nil, err
	}

	// Every organization starts with a working scoring setup.
	if _, err := s.templates.ProvisionDefault(ctx, org.ID); err != nil {
		s.rollbackRegistration(ctx, org.ID)
		return nil, nil, err
	}

	s.logger.Info("organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("name", org.Name))

	return org, user, nil
}

// rollbackRegistration removes the speculative organization insert so a
// failed registration leaves nothing behind. The delete cascades to any
// user row already created for it.
func (s *organizationService) rollbackRegistration(ctx context.Context, orgID uuid.UUID) {
	if err := s.orgs.Delete(ctx, orgID); err != nil {
		s.logger.Error("failed to roll back organization after registration failure",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
	}
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *organizationService) List(ctx context.Context) ([]*models.Organization, error) {
	return s.orgs.List(ctx)
}

func (s *organizationService) Update(ctx context.Context, org *models.Organization) error {
	return s.orgs.Update(ctx, org)
}

func (s *organizationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.orgs.Delete(ctx, id)
}

// Ensure organizationService implements OrganizationService at compile time.
var _ OrganizationService = (*organizationService)(nil)
