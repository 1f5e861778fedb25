// Package services implements the engine's business logic on top of
// the repositories and provider clients.
package services

import (
	"encoding/json"
	"math"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/models"
)

// ValidateAssessment enforces the output schema contract on a parsed
// LLM response. The contract:
//
//   - Top level must contain keys "scores" and "coaching".
//   - "scores" must contain exactly the fixed dimension set; each value
//     must be an integer in [1, 5]. Violations name the dimension and
//     the received value; nothing is clamped or defaulted.
//   - "coaching" must contain a non-empty "summary" and the "wins",
//     "gaps", "next_actions" string lists (each possibly empty).
//
// Validation is all-or-nothing: the first violation rejects the whole
// artifact.
func ValidateAssessment(payload map[string]json.RawMessage) (models.ScoreMap, *models.Coaching, error) {
	scoresRaw, ok := payload["scores"]
	if !ok {
		return nil, nil, apperrors.NewValidationError("scores", "missing required key")
	}
	coachingRaw, ok := payload["coaching"]
	if !ok {
		return nil, nil, apperrors.NewValidationError("coaching", "missing required key")
	}

	scores, err := validateScores(scoresRaw)
	if err != nil {
		return nil, nil, err
	}

	coaching, err := validateCoaching(coachingRaw)
	if err != nil {
		return nil, nil, err
	}

	return scores, coaching, nil
}

func validateScores(raw json.RawMessage) (models.ScoreMap, error) {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, apperrors.NewValidationError("scores", "must be an object")
	}

	scores := make(models.ScoreMap, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		value, ok := values[dim]
		if !ok {
			return nil, apperrors.NewValidationError("scores."+dim, "missing required dimension")
		}

		// encoding/json decodes every JSON number as float64.
		number, ok := value.(float64)
		if !ok {
			return nil, apperrors.NewValidationError("scores."+dim, "must be an integer, got %v", value)
		}
		if math.Trunc(number) != number {
			return nil, apperrors.NewValidationError("scores."+dim, "must be an integer, got %v", number)
		}

		score := int(number)
		if score < models.MinScore || score > models.MaxScore {
			return nil, apperrors.NewValidationError("scores."+dim,
				"must be in range [%d, %d], got %d", models.MinScore, models.MaxScore, score)
		}
		scores[dim] = score
	}

	for key := range values {
		if _, ok := scores[key]; !ok {
			return nil, apperrors.NewValidationError("scores."+key, "unexpected dimension")
		}
	}

	return scores, nil
}

func validateCoaching(raw json.RawMessage) (*models.Coaching, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.NewValidationError("coaching", "must be an object")
	}

	summaryRaw, ok := fields["summary"]
	if !ok {
		return nil, apperrors.NewValidationError("coaching.summary", "missing required key")
	}
	var summary string
	if err := json.Unmarshal(summaryRaw, &summary); err != nil {
		return nil, apperrors.NewValidationError("coaching.summary", "must be a string")
	}
	if summary == "" {
		return nil, apperrors.NewValidationError("coaching.summary", "must not be empty")
	}

	coaching := &models.Coaching{Summary: summary}
	for key, target := range map[string]*[]string{
		"wins":         &coaching.Wins,
		"gaps":         &coaching.Gaps,
		"next_actions": &coaching.NextActions,
	} {
		listRaw, ok := fields[key]
		if !ok {
			return nil, apperrors.NewValidationError("coaching."+key, "missing required key")
		}
		var list []string
		if err := json.Unmarshal(listRaw, &list); err != nil {
			return nil, apperrors.NewValidationError("coaching."+key, "must be a list of strings")
		}
		if list == nil {
			list = []string{}
		}
		*target = list
	}

	return coaching, nil
}
