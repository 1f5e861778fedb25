package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/database"
	"github.com/spincoach-ai/engine/pkg/models"
)

// TranscriptRepository defines the interface for transcript data access.
// Transcript content is immutable; there is no Update.
type TranscriptRepository interface {
	Create(ctx context.Context, transcript *models.Transcript) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error)

	// Delete removes a transcript. Used to roll back a speculative
	// insert when scoring fails on the assess path.
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// transcriptRepository implements TranscriptRepository using PostgreSQL.
type transcriptRepository struct{}

// NewTranscriptRepository creates a new transcript repository.
func NewTranscriptRepository() TranscriptRepository {
	return &transcriptRepository{}
}

func (r *transcriptRepository) Create(ctx context.Context, transcript *models.Transcript) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if transcript.ID == uuid.Nil {
		transcript.ID = uuid.New()
	}
	transcript.CreatedAt = time.Now()
	if transcript.Metadata == nil {
		transcript.Metadata = map[string]any{}
	}

	metadata, err := json.Marshal(transcript.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO transcripts (id, organization_id, representative_id, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = scope.Conn.Exec(ctx, query,
		transcript.ID,
		transcript.OrganizationID,
		transcript.RepresentativeID,
		transcript.Content,
		metadata,
		transcript.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}

	return nil
}

func (r *transcriptRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, representative_id, content, metadata, created_at
		FROM transcripts
		WHERE organization_id = $1 AND id = $2`

	var transcript models.Transcript
	var metadata []byte
	err := scope.Conn.QueryRow(ctx, query, orgID, id).Scan(
		&transcript.ID,
		&transcript.OrganizationID,
		&transcript.RepresentativeID,
		&transcript.Content,
		&metadata,
		&transcript.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	if err := json.Unmarshal(metadata, &transcript.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &transcript, nil
}

func (r *transcriptRepository) List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, representative_id, content, metadata, created_at
		FROM transcripts
		WHERE organization_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*models.Transcript
	for rows.Next() {
		var transcript models.Transcript
		var metadata []byte
		err := rows.Scan(
			&transcript.ID,
			&transcript.OrganizationID,
			&transcript.RepresentativeID,
			&transcript.Content,
			&metadata,
			&transcript.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		if err := json.Unmarshal(metadata, &transcript.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		transcripts = append(transcripts, &transcript)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transcripts: %w", err)
	}

	return transcripts, nil
}

func (r *transcriptRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM transcripts WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure transcriptRepository implements TranscriptRepository at compile time.
var _ TranscriptRepository = (*transcriptRepository)(nil)
