package models

import (
	"time"

	"github.com/google/uuid"
)

// Dimensions is the fixed, ordered SPIN rubric dimension set. Every score map
// contains exactly these keys; metrics iterate them in this order.
var Dimensions = []string{
	"situation",
	"problem",
	"implication",
	"need_payoff",
	"flow",
	"tone",
	"engagement",
}

const (
	// MinScore and MaxScore bound every dimension score (closed range).
	MinScore = 1
	MaxScore = 5
)

// ScoreMap maps dimension name to an integer score in [MinScore, MaxScore].
type ScoreMap map[string]int

// Coaching is the qualitative half of an assessment.
type Coaching struct {
	Summary     string   `json:"summary"`
	Wins        []string `json:"wins"`
	Gaps        []string `json:"gaps"`
	NextActions []string `json:"next_actions"`
}

// Assessment is one scored transcript: a full dimension score map plus
// coaching, stamped with the model and prompt version that produced it.
// Assessments are append-only; a re-score creates a new row.
type Assessment struct {
	ID            uuid.UUID `json:"id"`
	TranscriptID  uuid.UUID `json:"transcript_id"`
	Scores        ScoreMap  `json:"scores"`
	Coaching      Coaching  `json:"coaching"`
	ModelName     string    `json:"model_name"`
	PromptVersion string    `json:"prompt_version"`
	CreatedAt     time.Time `json:"created_at"`
}
