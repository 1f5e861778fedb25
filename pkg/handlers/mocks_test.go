package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/auth"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/services"
)

// noopTenant stands in for the database-scope middleware in unit tests.
var noopTenant TenantMiddleware = func(next http.HandlerFunc) http.HandlerFunc { return next }

// authedRequest returns a request carrying claims for the given organization.
func authedRequest(method, target string, body io.Reader, orgID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	claims := &auth.Claims{OrganizationID: orgID.String()}
	claims.Subject = uuid.NewString()
	return req.WithContext(auth.SetClaims(req.Context(), claims))
}

type mockTranscriptService struct {
	transcript  *models.Transcript
	transcripts []*models.Transcript
	assessment  *models.Assessment
	assessments []*models.Assessment
	err         error
}

func (m *mockTranscriptService) Ingest(ctx context.Context, transcript *models.Transcript) error {
	if m.err != nil {
		return m.err
	}
	transcript.ID = uuid.New()
	return nil
}

func (m *mockTranscriptService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.transcript, nil
}

func (m *mockTranscriptService) List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error) {
	return m.transcripts, m.err
}

func (m *mockTranscriptService) Assess(ctx context.Context, transcript *models.Transcript) (*models.Assessment, error) {
	if m.err != nil {
		return nil, m.err
	}
	transcript.ID = uuid.New()
	assessment := *m.assessment
	assessment.TranscriptID = transcript.ID
	return &assessment, nil
}

func (m *mockTranscriptService) ListAssessments(ctx context.Context, orgID, transcriptID uuid.UUID) ([]*models.Assessment, error) {
	return m.assessments, m.err
}

var _ services.TranscriptService = (*mockTranscriptService)(nil)

type mockTemplateService struct {
	tmpl      *models.PromptTemplate
	templates []*models.PromptTemplate
	err       error

	activated []uuid.UUID
}

func (m *mockTemplateService) Create(ctx context.Context, tmpl *models.PromptTemplate, activate bool) error {
	if m.err != nil {
		return m.err
	}
	tmpl.ID = uuid.New()
	tmpl.IsActive = activate
	return nil
}

func (m *mockTemplateService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.tmpl == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.tmpl, nil
}

func (m *mockTemplateService) GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.tmpl == nil {
		return nil, apperrors.ErrNoActiveTemplate
	}
	return m.tmpl, nil
}

func (m *mockTemplateService) List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error) {
	return m.templates, m.err
}

func (m *mockTemplateService) Update(ctx context.Context, tmpl *models.PromptTemplate) error {
	return m.err
}

func (m *mockTemplateService) Activate(ctx context.Context, orgID, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockTemplateService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.err
}

func (m *mockTemplateService) ProvisionDefault(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	return m.tmpl, m.err
}

var _ services.TemplateService = (*mockTemplateService)(nil)

type mockEvaluationService struct {
	run      *models.EvaluationRun
	runs     []*models.EvaluationRun
	dataset  *models.EvaluationDataset
	datasets []*models.EvaluationDataset
	err      error
}

func (m *mockEvaluationService) CreateDataset(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error {
	if m.err != nil {
		return m.err
	}
	dataset.ID = uuid.New()
	dataset.NumExamples = len(examples)
	return nil
}

func (m *mockEvaluationService) GetDataset(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error) {
	return m.dataset, m.err
}

func (m *mockEvaluationService) ListDatasets(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error) {
	return m.datasets, m.err
}

func (m *mockEvaluationService) DeleteDataset(ctx context.Context, orgID, id uuid.UUID) error {
	return m.err
}

func (m *mockEvaluationService) Run(ctx context.Context, orgID, templateID, datasetID uuid.UUID, experimentName string) (*models.EvaluationRun, error) {
	return m.run, m.err
}

func (m *mockEvaluationService) GetRun(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error) {
	return m.run, m.err
}

func (m *mockEvaluationService) ListRuns(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error) {
	return m.runs, m.err
}

var _ services.EvaluationService = (*mockEvaluationService)(nil)

type mockCredentialService struct {
	masked *services.MaskedCredential
	list   []*services.MaskedCredential
	err    error
}

func (m *mockCredentialService) Create(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) (*services.MaskedCredential, error) {
	return m.masked, m.err
}

func (m *mockCredentialService) Rotate(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) error {
	return m.err
}

func (m *mockCredentialService) GetActiveKey(ctx context.Context, orgID uuid.UUID, provider models.Provider) (string, string, error) {
	return "", "", m.err
}

func (m *mockCredentialService) List(ctx context.Context, orgID uuid.UUID) ([]*services.MaskedCredential, error) {
	return m.list, m.err
}

func (m *mockCredentialService) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	return m.err
}

var _ services.CredentialService = (*mockCredentialService)(nil)

type mockOrganizationService struct {
	org  *models.Organization
	user *models.User
	err  error
}

func (m *mockOrganizationService) Register(ctx context.Context, orgName, email, password string) (*models.Organization, *models.User, error) {
	return m.org, m.user, m.err
}

func (m *mockOrganizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return m.org, m.err
}

func (m *mockOrganizationService) List(ctx context.Context) ([]*models.Organization, error) {
	return []*models.Organization{m.org}, m.err
}

func (m *mockOrganizationService) Update(ctx context.Context, org *models.Organization) error {
	return m.err
}

func (m *mockOrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.err
}

var _ services.OrganizationService = (*mockOrganizationService)(nil)

type mockUserRepo struct {
	user *models.User
	err  error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return m.err }

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}
