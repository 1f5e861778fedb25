package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/crypto"
	"github.com/spincoach-ai/engine/pkg/models"
)

const (
	testMasterKey = "dGVzdC1rZXktZm9yLXVuaXQtdGVzdHMtMzItYnl0ZXM="
	testOpenAIKey = "sk-proj-abcdefghijklmnop1234"
)

func newCredentialFixture(t *testing.T) (*mockCredentialRepo, *crypto.CredentialEncryptor, CredentialService) {
	t.Helper()
	repo := newMockCredentialRepo()
	encryptor, err := crypto.NewCredentialEncryptor(testMasterKey)
	require.NoError(t, err)
	return repo, encryptor, NewCredentialService(repo, encryptor, zap.NewNop())
}

func TestCredentialCreateEncryptsAndMasks(t *testing.T) {
	repo, encryptor, service := newCredentialFixture(t)
	orgID := uuid.New()

	masked, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, "****...1234", masked.MaskedAPIKey)
	assert.Equal(t, "gpt-4o", masked.DefaultModel)
	assert.True(t, masked.IsActive)

	// Plaintext never reaches the repository.
	stored := repo.creds[masked.Credential.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, testOpenAIKey, stored.EncryptedAPIKey)
	assert.NotContains(t, stored.EncryptedAPIKey, "1234")

	plaintext, err := encryptor.Decrypt(stored.EncryptedAPIKey)
	require.NoError(t, err)
	assert.Equal(t, testOpenAIKey, plaintext)
}

func TestCredentialCreateRejectsBadFormat(t *testing.T) {
	_, _, service := newCredentialFixture(t)

	_, err := service.Create(context.Background(), uuid.New(), models.ProviderOpenAI, "not-an-openai-key", "")
	require.Error(t, err)

	_, err = service.Create(context.Background(), uuid.New(), models.ProviderAnthropic, "sk-wrong-prefix-0000000000", "")
	require.Error(t, err)
}

func TestCredentialCreateSecondActiveConflicts(t *testing.T) {
	_, _, service := newCredentialFixture(t)
	orgID := uuid.New()

	_, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "")
	require.NoError(t, err)

	_, err = service.Create(context.Background(), orgID, models.ProviderOpenAI, "sk-proj-zzzzzzzzzzzzzzzz9999", "")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCredentialRotate(t *testing.T) {
	repo, encryptor, service := newCredentialFixture(t)
	orgID := uuid.New()

	created, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "gpt-4o")
	require.NoError(t, err)

	newKey := "sk-proj-qrstuvwxyzabcdef5678"
	require.NoError(t, service.Rotate(context.Background(), orgID, models.ProviderOpenAI, newKey, ""))

	stored := repo.creds[created.Credential.ID]
	plaintext, err := encryptor.Decrypt(stored.EncryptedAPIKey)
	require.NoError(t, err)
	assert.Equal(t, newKey, plaintext)
	// Empty model on rotate keeps the existing default.
	assert.Equal(t, "gpt-4o", stored.DefaultModel)
}

func TestCredentialRotateNoActive(t *testing.T) {
	_, _, service := newCredentialFixture(t)

	err := service.Rotate(context.Background(), uuid.New(), models.ProviderOpenAI, testOpenAIKey, "")
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)
}

func TestCredentialGetActiveKey(t *testing.T) {
	_, _, service := newCredentialFixture(t)
	orgID := uuid.New()

	_, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "gpt-4o")
	require.NoError(t, err)

	key, model, err := service.GetActiveKey(context.Background(), orgID, models.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, testOpenAIKey, key)
	assert.Equal(t, "gpt-4o", model)

	_, _, err = service.GetActiveKey(context.Background(), orgID, models.ProviderAnthropic)
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)
}

func TestCredentialGetActiveKeyDecryptFailure(t *testing.T) {
	repo, _, service := newCredentialFixture(t)
	orgID := uuid.New()

	created, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "")
	require.NoError(t, err)
	repo.creds[created.Credential.ID].EncryptedAPIKey = "garbage"

	_, _, err = service.GetActiveKey(context.Background(), orgID, models.ProviderOpenAI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusable")
}

func TestCredentialListMasks(t *testing.T) {
	repo, _, service := newCredentialFixture(t)
	orgID := uuid.New()

	_, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "")
	require.NoError(t, err)
	anthropicCred, err := service.Create(context.Background(), orgID, models.ProviderAnthropic, "sk-ant-api03-abcdef9876", "")
	require.NoError(t, err)

	// Corrupt one stored key; it should still list, with an empty mask.
	repo.creds[anthropicCred.Credential.ID].EncryptedAPIKey = "garbage"

	masked, err := service.List(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, masked, 2)

	byProvider := map[models.Provider]*MaskedCredential{}
	for _, m := range masked {
		byProvider[m.Provider] = m
	}
	assert.Equal(t, "****...1234", byProvider[models.ProviderOpenAI].MaskedAPIKey)
	assert.Equal(t, "", byProvider[models.ProviderAnthropic].MaskedAPIKey)
}

func TestCredentialDeactivateThenCreate(t *testing.T) {
	_, _, service := newCredentialFixture(t)
	orgID := uuid.New()

	created, err := service.Create(context.Background(), orgID, models.ProviderOpenAI, testOpenAIKey, "")
	require.NoError(t, err)
	require.NoError(t, service.Deactivate(context.Background(), orgID, created.Credential.ID))

	// With the old credential inactive a replacement is allowed.
	_, err = service.Create(context.Background(), orgID, models.ProviderOpenAI, "sk-proj-zzzzzzzzzzzzzzzz9999", "")
	require.NoError(t, err)

	_, _, err = service.GetActiveKey(context.Background(), orgID, models.ProviderOpenAI)
	require.NoError(t, err)
}
