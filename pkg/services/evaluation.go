package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/llm"
	"github.com/spincoach-ai/engine/pkg/logging"
	"github.com/spincoach-ai/engine/pkg/metrics"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// EvaluationService manages labeled datasets and evaluation runs.
type EvaluationService interface {
	// CreateDataset stores a dataset with its labeled examples after
	// validating every label map covers the full dimension set.
	CreateDataset(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error

	GetDataset(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error)
	ListDatasets(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error)
	DeleteDataset(ctx context.Context, orgID, id uuid.UUID) error

	// Run scores every dataset row with the given template and
	// computes agreement metrics against the stored labels. Rows that
	// fail to score are excluded from the metric vectors rather than
	// aborting the run; NumExamples reports the rows actually used.
	Run(ctx context.Context, orgID, templateID, datasetID uuid.UUID, experimentName string) (*models.EvaluationRun, error)

	GetRun(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error)
	ListRuns(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error)
}

// evaluationService implements EvaluationService.
type evaluationService struct {
	datasets  repositories.DatasetRepository
	runs      repositories.RunRepository
	templates repositories.TemplateRepository
	scoring   ScoringService
	pool      *llm.WorkerPool
	logger    *zap.Logger
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(
	datasets repositories.DatasetRepository,
	runs repositories.RunRepository,
	templates repositories.TemplateRepository,
	scoring ScoringService,
	pool *llm.WorkerPool,
	logger *zap.Logger,
) EvaluationService {
	return &evaluationService{
		datasets:  datasets,
		runs:      runs,
		templates: templates,
		scoring:   scoring,
		pool:      pool,
		logger:    logger.Named("evaluation"),
	}
}

func (s *evaluationService) CreateDataset(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error {
	if dataset.Name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if len(examples) == 0 {
		return fmt.Errorf("dataset must contain at least one example")
	}

	for i, example := range examples {
		if example.Transcript == "" {
			return apperrors.NewValidationError(fmt.Sprintf("examples[%d].transcript", i), "must not be empty")
		}
		for _, dim := range models.Dimensions {
			label, ok := example.Labels[dim]
			if !ok {
				return apperrors.NewValidationError(
					fmt.Sprintf("examples[%d].labels.%s", i, dim), "missing required dimension")
			}
			if label < models.MinScore || label > models.MaxScore {
				return apperrors.NewValidationError(
					fmt.Sprintf("examples[%d].labels.%s", i, dim),
					"must be in range [%d, %d], got %d", models.MinScore, models.MaxScore, label)
			}
		}
	}

	return s.datasets.CreateWithExamples(ctx, dataset, examples)
}

func (s *evaluationService) GetDataset(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error) {
	return s.datasets.GetByID(ctx, orgID, id)
}

func (s *evaluationService) ListDatasets(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error) {
	return s.datasets.List(ctx, orgID)
}

func (s *evaluationService) DeleteDataset(ctx context.Context, orgID, id uuid.UUID) error {
	return s.datasets.Delete(ctx, orgID, id)
}

// rowScore is one successfully scored dataset row.
type rowScore struct {
	position  int
	scores    models.ScoreMap
	modelName string
}

func (s *evaluationService) Run(ctx context.Context, orgID, templateID, datasetID uuid.UUID, experimentName string) (*models.EvaluationRun, error) {
	// The template under test is passed explicitly; active-template
	// resolution is deliberately bypassed here.
	tmpl, err := s.templates.GetByID(ctx, orgID, templateID)
	if err != nil {
		return nil, err
	}

	dataset, err := s.datasets.GetByID(ctx, orgID, datasetID)
	if err != nil {
		return nil, err
	}

	examples, err := s.datasets.GetExamples(ctx, dataset.ID)
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("dataset %s has no examples", dataset.ID)
	}

	// Resolve credential and client once; rows only share this
	// read-only state.
	scorer, err := s.scoring.Prepare(ctx, orgID, tmpl)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	items := make([]llm.WorkItem[rowScore], len(examples))
	for i, example := range examples {
		position := example.Position
		transcript := example.Transcript
		items[i] = llm.WorkItem[rowScore]{
			ID: fmt.Sprintf("example-%d", position),
			Execute: func(ctx context.Context) (rowScore, error) {
				assessment, err := scorer.Score(ctx, transcript)
				if err != nil {
					return rowScore{}, err
				}
				return rowScore{
					position:  position,
					scores:    assessment.Scores,
					modelName: assessment.ModelName,
				}, nil
			},
		}
	}

	results := llm.Process(ctx, s.pool, items, func(completed, total int) {
		if completed%10 == 0 || completed == total {
			s.logger.Info("evaluation progress",
				zap.Int("completed", completed),
				zap.Int("total", total))
		}
	})

	var succeeded []rowScore
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			// A failed row is excluded from the metric vectors; it
			// never aborts the run.
			failed++
			s.logger.Warn("example failed to score",
				zap.String("example", result.ID),
				zap.String("error", logging.SanitizeError(result.Err)))
			continue
		}
		succeeded = append(succeeded, result.Result)
	}
	sort.Slice(succeeded, func(i, j int) bool { return succeeded[i].position < succeeded[j].position })

	labelsByPosition := make(map[int]models.ScoreMap, len(examples))
	for _, example := range examples {
		labelsByPosition[example.Position] = example.Labels
	}

	run := &models.EvaluationRun{
		PromptTemplateID: tmpl.ID,
		DatasetID:        &dataset.ID,
		ExperimentName:   experimentName,
		NumExamples:      len(succeeded),
		PerDimension:     map[string]models.DimensionMetrics{},
		RuntimeSeconds:   time.Since(start).Seconds(),
	}

	if len(succeeded) > 0 {
		run.ModelName = succeeded[0].modelName

		predictions := make(map[string][]int, len(models.Dimensions))
		groundTruth := make(map[string][]int, len(models.Dimensions))
		for _, row := range succeeded {
			labels := labelsByPosition[row.position]
			for _, dim := range models.Dimensions {
				predictions[dim] = append(predictions[dim], row.scores[dim])
				groundTruth[dim] = append(groundTruth[dim], labels[dim])
			}
		}

		report, err := metrics.Compute(predictions, groundTruth)
		if err != nil {
			return nil, fmt.Errorf("failed to compute metrics: %w", err)
		}

		run.PerDimension = report.PerDimension
		run.MacroPearsonR = &report.MacroPearsonR
		run.MacroQWK = &report.MacroQWK
		run.MacroPlusMinus1 = &report.MacroPlusMinus1
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("evaluation run completed",
		zap.String("run_id", run.ID.String()),
		zap.String("template_id", tmpl.ID.String()),
		zap.Int("num_examples", run.NumExamples),
		zap.Int("failed_rows", failed),
		zap.Float64("runtime_seconds", run.RuntimeSeconds))

	return run, nil
}

func (s *evaluationService) GetRun(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *evaluationService) ListRuns(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error) {
	return s.runs.ListByTemplate(ctx, templateID)
}

// Ensure evaluationService implements EvaluationService at compile time.
var _ EvaluationService = (*evaluationService)(nil)
