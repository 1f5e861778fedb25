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

// RunRepository defines the interface for evaluation run data access.
// Runs are immutable once created.
type RunRepository interface {
	Create(ctx context.Context, run *models.EvaluationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error)

	// ListByTemplate returns all runs for a template, newest first.
	// Many runs may reference the same template for iteration tracking.
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error)
}

// runRepository implements RunRepository using PostgreSQL.
type runRepository struct{}

// NewRunRepository creates a new evaluation run repository.
func NewRunRepository() RunRepository {
	return &runRepository{}
}

const runColumns = `id, prompt_template_id, dataset_id, experiment_name, num_examples,
		macro_pearson_r, macro_qwk, macro_plus_minus_one, per_dimension_metrics,
		model_name, runtime_seconds, created_at`

func (r *runRepository) Create(ctx context.Context, run *models.EvaluationRun) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()

	perDimension, err := json.Marshal(run.PerDimension)
	if err != nil {
		return fmt.Errorf("failed to marshal per-dimension metrics: %w", err)
	}

	query := `
		INSERT INTO evaluation_runs (id, prompt_template_id, dataset_id, experiment_name, num_examples,
			macro_pearson_r, macro_qwk, macro_plus_minus_one, per_dimension_metrics,
			model_name, runtime_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = scope.Conn.Exec(ctx, query,
		run.ID,
		run.PromptTemplateID,
		run.DatasetID,
		run.ExperimentName,
		run.NumExamples,
		run.MacroPearsonR,
		run.MacroQWK,
		run.MacroPlusMinus1,
		perDimension,
		run.ModelName,
		run.RuntimeSeconds,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation run: %w", err)
	}

	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + runColumns + `
		FROM evaluation_runs
		WHERE id = $1`

	run, err := scanRun(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get evaluation run: %w", err)
	}

	return run, nil
}

func (r *runRepository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + runColumns + `
		FROM evaluation_runs
		WHERE prompt_template_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.EvaluationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation runs: %w", err)
	}

	return runs, nil
}

// scanRun reads one evaluation run row, unmarshaling the JSONB
// per-dimension metrics map.
func scanRun(row pgx.Row) (*models.EvaluationRun, error) {
	var run models.EvaluationRun
	var perDimension []byte

	err := row.Scan(
		&run.ID,
		&run.PromptTemplateID,
		&run.DatasetID,
		&run.ExperimentName,
		&run.NumExamples,
		&run.MacroPearsonR,
		&run.MacroQWK,
		&run.MacroPlusMinus1,
		&perDimension,
		&run.ModelName,
		&run.RuntimeSeconds,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(perDimension, &run.PerDimension); err != nil {
		return nil, fmt.Errorf("failed to unmarshal per-dimension metrics: %w", err)
	}

	return &run, nil
}

// Ensure runRepository implements RunRepository at compile time.
var _ RunRepository = (*runRepository)(nil)
