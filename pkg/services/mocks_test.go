package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// Stateful in-memory mocks for the repository and service interfaces.
// Error-injection fields let tests force specific failures.

type mockOrgRepo struct {
	orgs     map[uuid.UUID]*models.Organization
	getErr   error
	createErr error
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[uuid.UUID]*models.Organization)}
}

func (m *mockOrgRepo) Create(ctx context.Context, org *models.Organization) error {
	if m.createErr != nil {
		return m.createErr
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	for _, existing := range m.orgs {
		if existing.Name == org.Name {
			return apperrors.ErrConflict
		}
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	org, ok := m.orgs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return org, nil
}

func (m *mockOrgRepo) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	for _, org := range m.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockOrgRepo) List(ctx context.Context) ([]*models.Organization, error) {
	out := make([]*models.Organization, 0, len(m.orgs))
	for _, org := range m.orgs {
		out = append(out, org)
	}
	return out, nil
}

func (m *mockOrgRepo) Update(ctx context.Context, org *models.Organization) error {
	if _, ok := m.orgs[org.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orgs[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.orgs, id)
	return nil
}

var _ repositories.OrganizationRepository = (*mockOrgRepo)(nil)

type mockTemplateRepo struct {
	templates map[uuid.UUID]*models.PromptTemplate
	createErr error
	activeErr error
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[uuid.UUID]*models.PromptTemplate)}
}

func (m *mockTemplateRepo) Create(ctx context.Context, tmpl *models.PromptTemplate) error {
	if m.createErr != nil {
		return m.createErr
	}
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	copied := *tmpl
	m.templates[tmpl.ID] = &copied
	return nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PromptTemplate, error) {
	tmpl, ok := m.templates[id]
	if !ok || tmpl.OrganizationID != orgID {
		return nil, apperrors.ErrNotFound
	}
	return tmpl, nil
}

func (m *mockTemplateRepo) GetActive(ctx context.Context, orgID uuid.UUID) (*models.PromptTemplate, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	for _, tmpl := range m.templates {
		if tmpl.OrganizationID == orgID && tmpl.IsActive {
			return tmpl, nil
		}
	}
	return nil, apperrors.ErrNoActiveTemplate
}

func (m *mockTemplateRepo) List(ctx context.Context, orgID uuid.UUID) ([]*models.PromptTemplate, error) {
	var out []*models.PromptTemplate
	for _, tmpl := range m.templates {
		if tmpl.OrganizationID == orgID {
			out = append(out, tmpl)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, tmpl *models.PromptTemplate) error {
	stored, ok := m.templates[tmpl.ID]
	if !ok || stored.OrganizationID != tmpl.OrganizationID {
		return apperrors.ErrNotFound
	}
	copied := *tmpl
	m.templates[tmpl.ID] = &copied
	return nil
}

func (m *mockTemplateRepo) Activate(ctx context.Context, orgID, id uuid.UUID) error {
	target, ok := m.templates[id]
	if !ok || target.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	for _, tmpl := range m.templates {
		if tmpl.OrganizationID == orgID {
			tmpl.IsActive = false
		}
	}
	target.IsActive = true
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tmpl, ok := m.templates[id]
	if !ok || tmpl.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *mockTemplateRepo) activeCount(orgID uuid.UUID) int {
	count := 0
	for _, tmpl := range m.templates {
		if tmpl.OrganizationID == orgID && tmpl.IsActive {
			count++
		}
	}
	return count
}

var _ repositories.TemplateRepository = (*mockTemplateRepo)(nil)

type mockCredentialRepo struct {
	creds     map[uuid.UUID]*models.Credential
	createErr error
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{creds: make(map[uuid.UUID]*models.Credential)}
}

func (m *mockCredentialRepo) Create(ctx context.Context, cred *models.Credential) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.creds {
		if existing.OrganizationID == cred.OrganizationID &&
			existing.Provider == cred.Provider && existing.IsActive && cred.IsActive {
			return apperrors.ErrConflict
		}
	}
	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	copied := *cred
	m.creds[cred.ID] = &copied
	return nil
}

func (m *mockCredentialRepo) GetActive(ctx context.Context, orgID uuid.UUID, provider models.Provider) (*models.Credential, error) {
	for _, cred := range m.creds {
		if cred.OrganizationID == orgID && cred.Provider == provider && cred.IsActive {
			return cred, nil
		}
	}
	return nil, apperrors.ErrNoCredential
}

func (m *mockCredentialRepo) List(ctx context.Context, orgID uuid.UUID) ([]*models.Credential, error) {
	var out []*models.Credential
	for _, cred := range m.creds {
		if cred.OrganizationID == orgID {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (m *mockCredentialRepo) UpdateKey(ctx context.Context, orgID, id uuid.UUID, encryptedKey, defaultModel string) error {
	cred, ok := m.creds[id]
	if !ok || cred.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	cred.EncryptedAPIKey = encryptedKey
	cred.DefaultModel = defaultModel
	return nil
}

func (m *mockCredentialRepo) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	cred, ok := m.creds[id]
	if !ok || cred.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	cred.IsActive = false
	return nil
}

var _ repositories.CredentialRepository = (*mockCredentialRepo)(nil)

// mockCredentialService stands in for the full credential service when a
// test only needs key resolution.
type mockCredentialService struct {
	key   string
	model string
	err   error
}

func (m *mockCredentialService) Create(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) (*MaskedCredential, error) {
	return nil, m.err
}

func (m *mockCredentialService) Rotate(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) error {
	return m.err
}

func (m *mockCredentialService) GetActiveKey(ctx context.Context, orgID uuid.UUID, provider models.Provider) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.key, m.model, nil
}

func (m *mockCredentialService) List(ctx context.Context, orgID uuid.UUID) ([]*MaskedCredential, error) {
	return nil, m.err
}

func (m *mockCredentialService) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	return m.err
}

var _ CredentialService = (*mockCredentialService)(nil)

type mockTranscriptRepo struct {
	mu          sync.Mutex
	transcripts map[uuid.UUID]*models.Transcript
	deleted     []uuid.UUID
	createErr   error
	deleteErr   error
}

func newMockTranscriptRepo() *mockTranscriptRepo {
	return &mockTranscriptRepo{transcripts: make(map[uuid.UUID]*models.Transcript)}
}

func (m *mockTranscriptRepo) Create(ctx context.Context, transcript *models.Transcript) error {
	if m.createErr != nil {
		return m.createErr
	}
	if transcript.ID == uuid.Nil {
		transcript.ID = uuid.New()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts[transcript.ID] = transcript
	return nil
}

func (m *mockTranscriptRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	transcript, ok := m.transcripts[id]
	if !ok || transcript.OrganizationID != orgID {
		return nil, apperrors.ErrNotFound
	}
	return transcript, nil
}

func (m *mockTranscriptRepo) List(ctx context.Context, orgID uuid.UUID) ([]*models.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transcript
	for _, transcript := range m.transcripts {
		if transcript.OrganizationID == orgID {
			out = append(out, transcript)
		}
	}
	return out, nil
}

func (m *mockTranscriptRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	transcript, ok := m.transcripts[id]
	if !ok || transcript.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	delete(m.transcripts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

var _ repositories.TranscriptRepository = (*mockTranscriptRepo)(nil)

type mockAssessmentRepo struct {
	assessments map[uuid.UUID]*models.Assessment
	createErr   error
}

func newMockAssessmentRepo() *mockAssessmentRepo {
	return &mockAssessmentRepo{assessments: make(map[uuid.UUID]*models.Assessment)}
}

func (m *mockAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	m.assessments[assessment.ID] = assessment
	return nil
}

func (m *mockAssessmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	assessment, ok := m.assessments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return assessment, nil
}

func (m *mockAssessmentRepo) ListByTranscript(ctx context.Context, transcriptID uuid.UUID) ([]*models.Assessment, error) {
	var out []*models.Assessment
	for _, assessment := range m.assessments {
		if assessment.TranscriptID == transcriptID {
			out = append(out, assessment)
		}
	}
	return out, nil
}

var _ repositories.AssessmentRepository = (*mockAssessmentRepo)(nil)

type mockDatasetRepo struct {
	datasets  map[uuid.UUID]*models.EvaluationDataset
	examples  map[uuid.UUID][]*models.EvaluationExample
	createErr error
}

func newMockDatasetRepo() *mockDatasetRepo {
	return &mockDatasetRepo{
		datasets: make(map[uuid.UUID]*models.EvaluationDataset),
		examples: make(map[uuid.UUID][]*models.EvaluationExample),
	}
}

func (m *mockDatasetRepo) CreateWithExamples(ctx context.Context, dataset *models.EvaluationDataset, examples []*models.EvaluationExample) error {
	if m.createErr != nil {
		return m.createErr
	}
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}
	dataset.NumExamples = len(examples)
	for i, example := range examples {
		if example.ID == uuid.Nil {
			example.ID = uuid.New()
		}
		example.DatasetID = dataset.ID
		example.Position = i
	}
	m.datasets[dataset.ID] = dataset
	m.examples[dataset.ID] = examples
	return nil
}

func (m *mockDatasetRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.EvaluationDataset, error) {
	dataset, ok := m.datasets[id]
	if !ok || dataset.OrganizationID != orgID {
		return nil, apperrors.ErrNotFound
	}
	return dataset, nil
}

func (m *mockDatasetRepo) List(ctx context.Context, orgID uuid.UUID) ([]*models.EvaluationDataset, error) {
	var out []*models.EvaluationDataset
	for _, dataset := range m.datasets {
		if dataset.OrganizationID == orgID {
			out = append(out, dataset)
		}
	}
	return out, nil
}

func (m *mockDatasetRepo) GetExamples(ctx context.Context, datasetID uuid.UUID) ([]*models.EvaluationExample, error) {
	return m.examples[datasetID], nil
}

func (m *mockDatasetRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	dataset, ok := m.datasets[id]
	if !ok || dataset.OrganizationID != orgID {
		return apperrors.ErrNotFound
	}
	delete(m.datasets, id)
	delete(m.examples, id)
	return nil
}

var _ repositories.DatasetRepository = (*mockDatasetRepo)(nil)

type mockRunRepo struct {
	runs      map[uuid.UUID]*models.EvaluationRun
	createErr error
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{runs: make(map[uuid.UUID]*models.EvaluationRun)}
}

func (m *mockRunRepo) Create(ctx context.Context, run *models.EvaluationRun) error {
	if m.createErr != nil {
		return m.createErr
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	m.runs[run.ID] = run
	return nil
}

func (m *mockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EvaluationRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return run, nil
}

func (m *mockRunRepo) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.EvaluationRun, error) {
	var out []*models.EvaluationRun
	for _, run := range m.runs {
		if run.PromptTemplateID == templateID {
			out = append(out, run)
		}
	}
	return out, nil
}

var _ repositories.RunRepository = (*mockRunRepo)(nil)

// mockScoring routes Score/Prepare through a single function, letting
// transcript and evaluation tests script per-row outcomes.
type mockScoring struct {
	scoreFunc func(ctx context.Context, transcript string) (*models.Assessment, error)
}

func (m *mockScoring) Score(ctx context.Context, orgID uuid.UUID, transcript string) (*models.Assessment, error) {
	return m.scoreFunc(ctx, transcript)
}

func (m *mockScoring) Prepare(ctx context.Context, orgID uuid.UUID, tmpl *models.PromptTemplate) (TranscriptScorer, error) {
	return scorerFunc(m.scoreFunc), nil
}

type scorerFunc func(ctx context.Context, transcript string) (*models.Assessment, error)

func (f scorerFunc) Score(ctx context.Context, transcript string) (*models.Assessment, error) {
	return f(ctx, transcript)
}

var _ ScoringService = (*mockScoring)(nil)
var _ TranscriptScorer = (scorerFunc)(nil)
