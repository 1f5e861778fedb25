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

// DatasetRepository defines the interface for evaluation dataset data access.
type DatasetRepository interface {
	// CreateWithExamples inserts a dataset and its labeled examples in
	// one transaction. The dataset's NumExamples is set to the number
	// of examples actually inserted.
	CreateWithExamples(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error

	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error)

	// GetExamples returns a dataset's examples ordered by position.
	GetExamples(ctx context.Context, datasetID uuid.UUID) ([]*models.EvaluationExample, error)

	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// datasetRepository implements DatasetRepository using PostgreSQL.
type datasetRepository struct{}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository() DatasetRepository {
	return &datasetRepository{}
}

func (r *datasetRepository) CreateWithExamples(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	now := time.Now()
	dataset.CreatedAt = now
	dataset.UpdatedAt = now
	dataset.NumExamples = len(examples)

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	_, err = tx.Exec(ctx, `
		INSERT INTO evaluation_datasets (id, organization_id, name, description, num_examples, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dataset.ID,
		dataset.OrganizationID,
		dataset.Name,
		dataset.Description,
		dataset.NumExamples,
		dataset.CreatedAt,
		dataset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	for i, example := range examples {
		if example.ID == uuid.Nil {
			example.ID = uuid.New()
		}
		example.DatasetID = dataset.ID
		example.Position = i

		labels, err := json.Marshal(example.Labels)
		if err != nil {
			return fmt.Errorf("failed to marshal labels for example %d: %w", i, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO evaluation_examples (id, dataset_id, position, transcript, labels)
			VALUES ($1, $2, $3, $4, $5)`,
			example.ID,
			example.DatasetID,
			example.Position,
			example.Transcript,
			labels,
		)
		if err != nil {
			return fmt.Errorf("failed to create example %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, name, description, num_examples, created_at, updated_at
		FROM evaluation_datasets
		WHERE organization_id = $1 AND id = $2`

	var dataset models.EvaluationDataset
	err := scope.Conn.QueryRow(ctx, query, orgID, id).Scan(
		&dataset.ID,
		&dataset.OrganizationID,
		&dataset.Name,
		&dataset.Description,
		&dataset.NumExamples,
		&dataset.CreatedAt,
		&dataset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return &dataset, nil
}

func (r *datasetRepository) List(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, organization_id, name, description, num_examples, created_at, updated_at
		FROM evaluation_datasets
		WHERE organization_id = $1
		ORDER BY created_at DESC`

	rows, err := scope.Conn.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*models.EvaluationDataset
	for rows.Next() {
		var dataset models.EvaluationDataset
		err := rows.Scan(
			&dataset.ID,
			&dataset.OrganizationID,
			&dataset.Name,
			&dataset.Description,
			&dataset.NumExamples,
			&dataset.CreatedAt,
			&dataset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, &dataset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	return datasets, nil
}

func (r *datasetRepository) GetExamples(ctx context.Context, datasetID uuid.UUID) ([]*models.EvaluationExample, error) {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, dataset_id, position, transcript, labels
		FROM evaluation_examples
		WHERE dataset_id = $1
		ORDER BY position`

	rows, err := scope.Conn.Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get examples: %w", err)
	}
	defer rows.Close()

	var examples []*models.EvaluationExample
	for rows.Next() {
		var example models.EvaluationExample
		var labels []byte
		err := rows.Scan(
			&example.ID,
			&example.DatasetID,
			&example.Position,
			&example.Transcript,
			&labels,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan example: %w", err)
		}
		if err := json.Unmarshal(labels, &example.Labels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
		}
		examples = append(examples, &example)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating examples: %w", err)
	}

	return examples, nil
}

func (r *datasetRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	scope, ok := database.GetTenantScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	result, err := scope.Conn.Exec(ctx,
		`DELETE FROM evaluation_datasets WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure datasetRepository implements DatasetRepository at compile time.
var _ DatasetRepository = (*datasetRepository)(nil)
