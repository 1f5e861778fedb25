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

// CredentialRepository defines the interface for LLM credential data
// access. Keys are stored encrypted; encryption and decryption happen
// in the service layer. The at-most-one-active-per-(org, provider)
// invariant is enforced by a partial unique index, so two concurrent
// creates cannot both succeed.
type CredentialRepository interface {
	// Create inserts a new credential. Returns ErrConflict if an active
	// credential already exists for the (organization, provider) pair.
	Create(ctx context.Context, cred *models.Credential) error

	// GetActive retrieves the active credential for a provider.
	// Returns ErrNoCredential if none is active.
	GetActive(ctx context.Context, orgID uuid.UUID, provider models.Provider) (*models.Credential, error)

	// List retrieves all credentials for an organization.
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Credential, error)

	// UpdateKey rotates the encrypted key and default model of a credential.
	UpdateKey(ctx context.Context, orgID, id uuid.UUID, encryptedKey, defaultModel string) error

	// Deactivate marks a credential inactive.
	Deactivate(ctx context.Context, orgID, id uuid.UUID) error
}

// credentialRepository implements CredentialRepository using PostgreSQL.
type credentialRepository struct{}

// NewCredentialRepository creates a new credential repository.
func NewCredentialRepository() CredentialRepository {
	return &credentialRepository{}
}

func (r *credentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	now := time.Now()
	cred.CreatedAt = now
	cred.UpdatedAt = now

	query := `
		INSERT INTO llm_credentials (id, organization_id, provider, encrypted_api_key, default_model, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := scope.Conn.Exec(ctx, query,
		cred.ID,
		cred.OrganizationID,
		cred.Provider.String(),
		cred.EncryptedAPIKey,
		cred.DefaultModel,
		cred.IsActive,
		cred.CreatedAt,
		cred.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) GetActive(ctx context.Context, orgID uuid.UUID, provider models.Provider) (*models.Credential, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, provider, encrypted_api_key, default_model, is_active, created_at, updated_at
		FROM llm_credentials
		WHERE organization_id = $1 AND provider = $2 AND is_active`

	cred, err := scanCredential(scope.Conn.QueryRow(ctx, query, orgID, provider.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoCredential
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

func (r *credentialRepository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Credential, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, provider, encrypted_api_key, default_model, is_active, created_at, updated_at
		FROM llm_credentials
		WHERE organization_id = $1
		ORDER BY provider, created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}

	return creds, nil
}

func (r *credentialRepository) UpdateKey(ctx context.Context, orgID, id uuid.UUID, encryptedKey, defaultModel string) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE llm_credentials
		SET encrypted_api_key = $3, default_model = $4, updated_at = $5
		WHERE organization_id = $1 AND id = $2`

	result, err := scope.Conn.Exec(ctx, query, orgID, id, encryptedKey, defaultModel, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rotate credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *credentialRepository) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE llm_credentials
		SET is_active = false, updated_at = $3
		WHERE organization_id = $1 AND id = $2`

	result, err := scope.Conn.Exec(ctx, query, orgID, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanCredential reads one credential row, converting the stored
// provider string back to the typed Provider at the persistence boundary.
func scanCredential(row pgx.Row) (*models.Credential, error) {
	var cred models.Credential
	var provider string

	err := row.Scan(
		&cred.ID,
		&cred.OrganizationID,
		&provider,
		&cred.EncryptedAPIKey,
		&cred.DefaultModel,
		&cred.IsActive,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Provider, err = models.ParseProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("stored credential has invalid provider: %w", err)
	}

	return &cred, nil
}

// Ensure credentialRepository implements CredentialRepository at compile time.
var _ CredentialRepository = (*credentialRepository)(nil)
