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

// AssessmentRepository defines the interface for assessment data access.
// Assessments are append-only for reproducibility; there is no Update
// or Delete.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error)
	ListByTranscript(ctx context.Context, transcriptID uuid.UUID) ([]*models.Assessment, error)
}

// assessmentRepository implements AssessmentRepository using PostgreSQL.
type assessmentRepository struct{}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository() AssessmentRepository {
	return &assessmentRepository{}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	assessment.CreatedAt = time.Now()

	scores, err := json.Marshal(assessment.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	coaching, err := json.Marshal(assessment.Coaching)
	if err != nil {
		return fmt.Errorf("failed to marshal coaching: %w", err)
	}

	query := `
		INSERT INTO assessments (id, transcript_id, scores, coaching, model_name, prompt_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = scope.Conn.Exec(ctx, query,
		assessment.ID,
		assessment.TranscriptID,
		scores,
		coaching,
		assessment.ModelName,
		assessment.PromptVersion,
		assessment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	return nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, transcript_id, scores, coaching, model_name, prompt_version, created_at
		FROM assessments
		WHERE id = $1`

	assessment, err := scanAssessment(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return assessment, nil
}

func (r *assessmentRepository) ListByTranscript(ctx context.Context, transcriptID uuid.UUID) ([]*models.Assessment, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, transcript_id, scores, coaching, model_name, prompt_version, created_at
		FROM assessments
		WHERE transcript_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}

	return assessments, nil
}

// scanAssessment reads one assessment row, unmarshaling the JSONB
// scores and coaching columns.
func scanAssessment(row pgx.Row) (*models.Assessment, error) {
	var assessment models.Assessment
	var scores, coaching []byte

	err := row.Scan(
		&assessment.ID,
		&assessment.TranscriptID,
		&scores,
		&coaching,
		&assessment.ModelName,
		&assessment.PromptVersion,
		&assessment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scores, &assessment.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(coaching, &assessment.Coaching); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coaching: %w", err)
	}

	return &assessment, nil
}

// Ensure assessmentRepository implements AssessmentRepository at compile time.
var _ AssessmentRepository = (*assessmentRepository)(nil)
