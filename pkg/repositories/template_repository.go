package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/database"
	"github.com/spincoach-ai/engine/pkg/models"
)

// TemplateRepository defines the interface for prompt template data access.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *models.PromptTemplate) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error)

	// GetActive retrieves the single active template for an organization.
	// Returns ErrNoActiveTemplate if none is active.
	GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error)

	List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error)
	Update(ctx context.Context, tmpl *models.PromptTemplate) error

	// Activate makes the given template the organization's active one.
	// The previous active template is deactivated in the same
	// transaction. Concurrent activations for an organization queue on
	// its organizations row, so each one sees the previous winner's
	// commit and every call succeeds with exactly one template active.
	Activate(ctx context.Context, orgID, id uuid.UUID) error

	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// templateRepository implements TemplateRepository using PostgreSQL.
type templateRepository struct{}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository() TemplateRepository {
	return &templateRepository{}
}

const templateColumns = `id, organization_id, name, version, system_prompt, user_template, is_active, created_at, updated_at`

func (r *templateRepository) Create(ctx context.Context, tmpl *models.PromptTemplate) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	now := time.Now()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	query := `
		INSERT INTO prompt_templates (id, organization_id, name, version, system_prompt, user_template, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		tmpl.ID,
		tmpl.OrganizationID,
		tmpl.Name,
		tmpl.Version,
		tmpl.SystemPrompt,
		tmpl.UserTemplate,
		tmpl.IsActive,
		tmpl.CreatedAt,
		tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + templateColumns + `
		FROM prompt_templates
		WHERE organization_id = $1 AND id = $2`

	tmpl, err := scanTemplate(scope.Conn.QueryRow(ctx, query, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return tmpl, nil
}

func (r *templateRepository) GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + templateColumns + `
		FROM prompt_templates
		WHERE organization_id = $1 AND is_active`

	tmpl, err := scanTemplate(scope.Conn.QueryRow(ctx, query, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoActiveTemplate
		}
		return nil, fmt.Errorf("failed to get active template: %w", err)
	}

	return tmpl, nil
}

func (r *templateRepository) List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + templateColumns + `
		FROM prompt_templates
		WHERE organization_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.PromptTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tmpl *models.PromptTemplate) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE prompt_templates
		SET name = $3, version = $4, system_prompt = $5, user_template = $6, updated_at = $7
		WHERE organization_id = $1 AND id = $2`

	result, err := scope.Conn.Exec(ctx, query,
		tmpl.OrganizationID,
		tmpl.ID,
		tmpl.Name,
		tmpl.Version,
		tmpl.SystemPrompt,
		tmpl.UserTemplate,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *templateRepository) Activate(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	// Under READ COMMITTED the deactivate statement alone does not
	// serialize concurrent activations: with no active row it matches
	// nothing, and the racers then collide on the partial unique index.
	// Lock the organization row first so activations queue and each
	// transaction sees the previous one's commit.
	if _, err := tx.Exec(ctx, `
		SELECT id FROM organizations WHERE id = $1 FOR UPDATE`, orgID); err != nil {
		return fmt.Errorf("failed to lock organization: %w", err)
	}

	now := time.Now()

	// Deactivate first so the partial unique index never sees two
	// active rows within the transaction.
	_, err = tx.Exec(ctx, `
		UPDATE prompt_templates
		SET is_active = false, updated_at = $2
		WHERE organization_id = $1 AND is_active`, orgID, now)
	if err != nil {
		return fmt.Errorf("failed to deactivate templates: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE prompt_templates
		SET is_active = true, updated_at = $3
		WHERE organization_id = $1 AND id = $2`, orgID, id, now)
	if err != nil {
		return fmt.Errorf("failed to activate template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *templateRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM prompt_templates WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanTemplate reads one template row.
func scanTemplate(row pgx.Row) (*models.PromptTemplate, error) {
	var tmpl models.PromptTemplate
	err := row.Scan(
		&tmpl.ID,
		&tmpl.OrganizationID,
		&tmpl.Name,
		&tmpl.Version,
		&tmpl.SystemPrompt,
		&tmpl.UserTemplate,
		&tmpl.IsActive,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Ensure templateRepository implements TemplateRepository at compile time.
var _ TemplateRepository = (*templateRepository)(nil)
