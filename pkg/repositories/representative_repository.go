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

// RepresentativeRepository defines the interface for sales representative data access.
type RepresentativeRepository interface {
	Create(ctx context.Context, rep *models.Representative) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Representative, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Representative, error)
	Update(ctx context.Context, rep *models.Representative) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// representativeRepository implements RepresentativeRepository using PostgreSQL.
type representativeRepository struct{}

// NewRepresentativeRepository creates a new representative repository.
func NewRepresentativeRepository() RepresentativeRepository {
	return &representativeRepository{}
}

func (r *representativeRepository) Create(ctx context.Context, rep *models.Representative) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	now := time.Now()
	rep.CreatedAt = now
	rep.UpdatedAt = now

	query := `
		INSERT INTO representatives (id, organization_id, name, email, team, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := scope.Conn.Exec(ctx, query,
		rep.ID,
		rep.OrganizationID,
		rep.Name,
		rep.Email,
		rep.Team,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create representative: %w", err)
	}

	return nil
}

func (r *representativeRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Representative, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, name, email, team, created_at, updated_at
		FROM representatives
		WHERE organization_id = $1 AND id = $2`

	var rep models.Representative
	err := scope.Conn.QueryRow(ctx, query, orgID, id).Scan(
		&rep.ID,
		&rep.OrganizationID,
		&rep.Name,
		&rep.Email,
		&rep.Team,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get representative: %w", err)
	}

	return &rep, nil
}

func (r *representativeRepository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Representative, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, name, email, team, created_at, updated_at
		FROM representatives
		WHERE organization_id = $1
		ORDER BY name`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list representatives: %w", err)
	}
	defer rows.Close()

	var reps []*models.Representative
	for rows.Next() {
		var rep models.Representative
		err := rows.Scan(&rep.ID, &rep.OrganizationID, &rep.Name, &rep.Email, &rep.Team, &rep.CreatedAt, &rep.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan representative: %w", err)
		}
		reps = append(reps, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating representatives: %w", err)
	}

	return reps, nil
}

func (r *representativeRepository) Update(ctx context.Context, rep *models.Representative) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE representatives
		SET name = $3, email = $4, team = $5, updated_at = $6
		WHERE organization_id = $1 AND id = $2`

	result, err := scope.Conn.Exec(ctx, query,
		rep.OrganizationID, rep.ID, rep.Name, rep.Email, rep.Team, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update representative: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *representativeRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM representatives WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete representative: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure representativeRepository implements RepresentativeRepository at compile time.
var _ RepresentativeRepository = (*representativeRepository)(nil)
