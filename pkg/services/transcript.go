package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// TranscriptService manages transcripts and the single-transcript
// assess path.
type TranscriptService interface {
	Ingest(ctx context.Context, transcript *models.Transcript) error
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error)

	// Assess stores a transcript, scores it, and persists the
	// assessment. If scoring fails at any stage the transcript insert
	// is rolled back; the request leaves no partial state behind.
	Assess(ctx context.Context, transcript *models.Transcript) (*models.Assessment, error)

	// ListAssessments returns the append-only assessment history of a
	// transcript, newest first.
	ListAssessments(ctx context.Context, orgID, transcriptID uuid.UUID) ([]*models.Assessment, error)
}

// transcriptService implements TranscriptService.
type transcriptService struct {
	transcripts repositories.TranscriptRepository
	assessments repositories.AssessmentRepository
	scoring     ScoringService
	logger      *zap.Logger
}

// NewTranscriptService creates a new transcript service.
func NewTranscriptService(
	transcripts repositories.TranscriptRepository,
	assessments repositories.AssessmentRepository,
	scoring ScoringService,
	logger *zap.Logger,
) TranscriptService {
	return &transcriptService{
		transcripts: transcripts,
		assessments: assessments,
		scoring:     scoring,
		logger:      logger,
	}
}

func (s *transcriptService) Ingest(ctx context.Context, transcript *models.Transcript) error {
	if strings.TrimSpace(transcript.Content) == "" {
		return fmt.Errorf("transcript content is required")
	}
	return s.transcripts.Create(ctx, transcript)
}

func (s *transcriptService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error) {
	return s.transcripts.GetByID(ctx, orgID, id)
}

func (s *transcriptService) List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error) {
	return s.transcripts.List(ctx, orgID)
}

func (s *transcriptService) Assess(ctx context.Context, transcript *models.Transcript) (*models.Assessment, error) {
	if err := s.Ingest(ctx, transcript); err != nil {
		return nil, err
	}

	assessment, err := s.scoring.Score(ctx, transcript.OrganizationID, transcript.Content)
	if err != nil {
		// Roll back the speculative transcript insert so a failed
		// assess request leaves nothing behind.
		if delErr := s.transcripts.Delete(ctx, transcript.OrganizationID, transcript.ID); delErr != nil {
			s.logger.Error("failed to roll back transcript after scoring failure",
				zap.String("transcript_id", transcript.ID.String()),
				zap.Error(delErr))
		}
		return nil, err
	}

	assessment.TranscriptID = transcript.ID
	if err := s.assessments.Create(ctx, assessment); err != nil {
		if delErr := s.transcripts.Delete(ctx, transcript.OrganizationID, transcript.ID); delErr != nil {
			s.logger.Error("failed to roll back transcript after persist failure",
				zap.String("transcript_id", transcript.ID.String()),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("transcript assessed",
		zap.String("transcript_id", transcript.ID.String()),
		zap.String("model", assessment.ModelName),
		zap.String("prompt_version", assessment.PromptVersion))

	return assessment, nil
}

func (s *transcriptService) ListAssessments(ctx context.Context, orgID, transcriptID uuid.UUID) ([]*models.Assessment, error) {
	// Confirm the transcript belongs to the organization first.
	if _, err := s.transcripts.GetByID(ctx, orgID, transcriptID); err != nil {
		return nil, err
	}
	return s.assessments.ListByTranscript(ctx, transcriptID)
}

// Ensure transcriptService implements TranscriptService at compile time.
var _ TranscriptService = (*transcriptService)(nil)
