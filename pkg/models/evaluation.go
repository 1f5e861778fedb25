package models

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationDataset is an organization-scoped golden set: transcripts paired
// with human labels per dimension. NumExamples records the declared size; a
// run reports the count it actually used, which may be smaller when rows fail.
type EvaluationDataset struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	NumExamples    int       `json:"num_examples"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EvaluationExample is one dataset row: a transcript and its human-labeled
// ground truth scores over the fixed dimension set.
type EvaluationExample struct {
	ID         uuid.UUID `json:"id"`
	DatasetID  uuid.UUID `json:"dataset_id"`
	Position   int       `json:"position"`
	Transcript string    `json:"transcript"`
	Labels     ScoreMap  `json:"labels"`
}

// DimensionMetrics holds the three agreement statistics for one dimension.
type DimensionMetrics struct {
	PearsonR             float64 `json:"pearson_r"`
	QWK                  float64 `json:"qwk"`
	PlusMinusOneAccuracy float64 `json:"plus_minus_one_accuracy"`
}

// EvaluationRun is the immutable result of running one prompt template
// against one dataset. Macro scalars are nil when no rows were usable.
type EvaluationRun struct {
	ID               uuid.UUID                   `json:"id"`
	PromptTemplateID uuid.UUID                   `json:"prompt_template_id"`
	DatasetID        *uuid.UUID                  `json:"dataset_id,omitempty"`
	ExperimentName   string                      `json:"experiment_name,omitempty"`
	NumExamples      int                         `json:"num_examples"`
	MacroPearsonR    *float64                    `json:"macro_pearson_r"`
	MacroQWK         *float64                    `json:"macro_qwk"`
	MacroPlusMinus1  *float64                    `json:"macro_plus_minus_one"`
	PerDimension     map[string]DimensionMetrics `json:"per_dimension_metrics"`
	ModelName        string                      `json:"model_name,omitempty"`
	RuntimeSeconds   float64                     `json:"runtime_seconds"`
	CreatedAt        time.Time                   `json:"created_at"`
}
