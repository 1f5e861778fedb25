// Package repositories provides PostgreSQL data access for the engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/database"
	"github.com/spincoach-ai/engine/pkg/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// OrganizationRepository defines the interface for organization data access.
type OrganizationRepository interface {
	// Create inserts a new organization. Returns ErrConflict if the name
	// is already taken (case-insensitive).
	Create(ctx context.Context, org *models.Organization) error

	// GetByID retrieves an organization by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// GetByName retrieves an organization by name (case-insensitive).
	GetByName(ctx context.Context, name string) (*models.Organization, error)

	// List retrieves all organizations.
	List(ctx context.Context) ([]*models.Organization, error)

	// Update modifies an organization's name and active flag.
	Update(ctx context.Context, org *models.Organization) error

	// Delete removes an organization and cascades to all scoped entities.
	Delete(ctx context.Context, id uuid.UUID) error
}

// organizationRepository implements OrganizationRepository using PostgreSQL.
type organizationRepository struct{}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository() OrganizationRepository {
	return &organizationRepository{}
}

func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	query := `
		INSERT INTO organizations (id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := scope.Conn.Exec(ctx, query, org.ID, org.Name, org.IsActive, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	var org models.Organization
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM organizations
		WHERE lower(name) = lower($1)`

	var org models.Organization
	err := scope.Conn.QueryRow(ctx, query, name).Scan(
		&org.ID,
		&org.Name,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *models.Organization) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE organizations
		SET name = $2, is_active = $3, updated_at = $4
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, org.ID, org.Name, org.IsActive, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *organizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure organizationRepository implements OrganizationRepository at compile time.
var _ OrganizationRepository = (*organizationRepository)(nil)
