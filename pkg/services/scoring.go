package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/llm"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/prompts"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// TranscriptScorer scores transcripts against one resolved
// template/credential pair. It performs no database access, so a
// single scorer is safe to share across concurrent evaluation rows.
type TranscriptScorer interface {
	Score(ctx context.Context, transcript string) (*models.Assessment, error)
}

// ScoringService runs the scoring pipeline: resolve active template,
// render prompt, resolve provider credential, invoke the model, and
// validate the structured output. Any failure aborts the whole
// operation; nothing is persisted here.
type ScoringService interface {
	// Score runs the full pipeline using the organization's active
	// template. The returned assessment is not persisted and carries
	// no transcript ID; the caller owns persistence.
	Score(ctx context.Context, orgID uuid.UUID, transcript string) (*models.Assessment, error)

	// Prepare resolves credential and client state for an explicitly
	// chosen template, overriding active-template resolution. The
	// returned scorer is read-only shared state for evaluation runs.
	Prepare(ctx context.Context, orgID uuid.UUID, tmpl *models.PromptTemplate) (TranscriptScorer, error)
}

// scoringService implements ScoringService.
type scoringService struct {
	orgs         repositories.OrganizationRepository
	templates    repositories.TemplateRepository
	credentials  CredentialService
	clients      llm.ProviderClientFactory
	defaultModel string
	logger       *zap.Logger
}

// NewScoringService creates a new scoring service.
func NewScoringService(
	orgs repositories.OrganizationRepository,
	templates repositories.TemplateRepository,
	credentials CredentialService,
	clients llm.ProviderClientFactory,
	defaultModel string,
	logger *zap.Logger,
) ScoringService {
	return &scoringService{
		orgs:         orgs,
		templates:    templates,
		credentials:  credentials,
		clients:      clients,
		defaultModel: defaultModel,
		logger:       logger.Named("scoring"),
	}
}

func (s *scoringService) Score(ctx context.Context, orgID uuid.UUID, transcript string) (*models.Assessment, error) {
	tmpl, err := s.templates.GetActive(ctx, orgID)
	if err != nil {
		return nil, err
	}

	scorer, err := s.Prepare(ctx, orgID, tmpl)
	if err != nil {
		return nil, err
	}

	return scorer.Score(ctx, transcript)
}

func (s *scoringService) Prepare(ctx context.Context, orgID uuid.UUID, tmpl *models.PromptTemplate) (TranscriptScorer, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, apperrors.ErrInactiveOrg
	}

	model := s.defaultModel
	provider, err := models.DetectProvider(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidProvider, err)
	}

	apiKey, credModel, err := s.credentials.GetActiveKey(ctx, orgID, provider)
	if err != nil {
		return nil, err
	}
	// A credential's default model overrides the process-wide default
	// for its provider.
	if credModel != "" {
		model = credModel
	}

	client, err := s.clients.ClientFor(provider, apiKey)
	if err != nil {
		return nil, err
	}

	return &transcriptScorer{
		client: client,
		tmpl:   tmpl,
		model:  model,
		logger: s.logger,
	}, nil
}

// transcriptScorer is the resolved, shareable scoring state.
type transcriptScorer struct {
	client llm.ProviderClient
	tmpl   *models.PromptTemplate
	model  string
	logger *zap.Logger
}

func (p *transcriptScorer) Score(ctx context.Context, transcript string) (*models.Assessment, error) {
	system, user, err := prompts.Render(p.tmpl, transcript)
	if err != nil {
		return nil, err
	}

	// Temperature 0 to maximize determinism. Malformed output is never
	// retried here; transient provider failures are the caller's call.
	raw, err := p.client.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        user,
		Model:       p.model,
		Temperature: 0,
		WantJSON:    true,
	})
	if err != nil {
		return nil, err
	}

	payload, err := llm.ParseResponse[map[string]json.RawMessage](raw)
	if err != nil {
		return nil, err
	}

	scores, coaching, err := ValidateAssessment(payload)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("transcript scored",
		zap.String("model", p.model),
		zap.String("prompt_version", p.tmpl.Version))

	return &models.Assessment{
		Scores:        scores,
		Coaching:      *coaching,
		ModelName:     p.model,
		PromptVersion: p.tmpl.Version,
	}, nil
}
