package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/prompts"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// TemplateService manages prompt templates and the single-active
// invariant.
type TemplateService interface {
	Create(ctx context.Context, tmpl *models.PromptTemplate, activate bool) error
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error)
	GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error)
	Update(ctx context.Context, tmpl *models.PromptTemplate) error

	// Activate atomically makes the template the organization's only
	// active one.
	Activate(ctx context.Context, orgID, id uuid.UUID) error

	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// ProvisionDefault creates and activates the built-in v0 template.
	// Called once when an organization is created.
	ProvisionDefault(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error)
}

// templateService implements TemplateService.
type templateService struct {
	repo   repositories.TemplateRepository
	logger *zap.Logger
}

// NewTemplateService creates a new template service.
func NewTemplateService(repo repositories.TemplateRepository, logger *zap.Logger) TemplateService {
	return &templateService{
		repo:   repo,
		logger: logger,
	}
}

func (s *templateService) Create(ctx context.Context, tmpl *models.PromptTemplate, activate bool) error {
	if tmpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if !tmpl.HasPlaceholder() {
		return apperrors.ErrMissingPlaceholder
	}
	if tmpl.Version == "" {
		tmpl.Version = "v1"
	}
	// Templates are created inactive; activation is an explicit state
	// transition so the single-active invariant has one code path.
	tmpl.IsActive = false

	if err := s.repo.Create(ctx, tmpl); err != nil {
		return err
	}

	if activate {
		if err := s.repo.Activate(ctx, tmpl.OrganizationID, tmpl.ID); err != nil {
			return err
		}
		tmpl.IsActive = true
	}

	s.logger.Info("template created",
		zap.String("organization_id", tmpl.OrganizationID.String()),
		zap.String("name", tmpl.Name),
		zap.String("version", tmpl.Version),
		zap.Bool("active", tmpl.IsActive))

	return nil
}

func (s *templateService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *templateService) GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	return s.repo.GetActive(ctx, orgID)
}

func (s *templateService) List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error) {
	return s.repo.List(ctx, orgID)
}

func (s *templateService) Update(ctx context.Context, tmpl *models.PromptTemplate) error {
	if !tmpl.HasPlaceholder() {
		return apperrors.ErrMissingPlaceholder
	}
	return s.repo.Update(ctx, tmpl)
}

func (s *templateService) Activate(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.repo.Activate(ctx, orgID, id); err != nil {
		return err
	}

	s.logger.Info("template activated",
		zap.String("organization_id", orgID.String()),
		zap.String("template_id", id.String()))

	return nil
}

func (s *templateService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, orgID, id)
}

func (s *templateService) ProvisionDefault(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	tmpl := &models.PromptTemplate{
		OrganizationID: orgID,
		Name:           prompts.DefaultTemplateName,
		Version:        prompts.DefaultVersion,
		SystemPrompt:   prompts.DefaultSystemPrompt,
		UserTemplate:   prompts.DefaultUserTemplate,
	}

	if err := s.Create(ctx, tmpl, true); err != nil {
		return nil, fmt.Errorf("failed to provision default template: %w", err)
	}

	return tmpl, nil
}

// Ensure templateService implements TemplateService at compile time.
var _ TemplateService = (*templateService)(nil)
