package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/audit"
	"github.com/spincoach-ai/engine/pkg/crypto"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/repositories"
)

// MaskedCredential is the display form of a credential. The key shows
// only a fixed mask plus the last four characters; plaintext never
// leaves the service except to build provider clients.
type MaskedCredential struct {
	*models.Credential
	MaskedAPIKey string `json:"masked_api_key"`
}

// CredentialService manages encrypted provider credentials.
type CredentialService interface {
	// Create stores a new active credential for (organization,
	// provider). The key is format-checked and encrypted before it
	// touches the database.
	Create(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) (*MaskedCredential, error)

	// Rotate re-encrypts the active credential for a provider with a
	// new key.
	Rotate(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) error

	// GetActiveKey returns the decrypted key and default model of the
	// active credential for a provider. A decryption failure is
	// surfaced, not retried; it means the key must be re-entered.
	GetActiveKey(ctx context.Context, orgID uuid.UUID, provider models.Provider) (string, string, error)

	// List returns all credentials for an organization in masked form.
	List(ctx context.Context, orgID uuid.UUID) ([]*MaskedCredential, error)

	// Deactivate marks a credential inactive.
	Deactivate(ctx context.Context, orgID, id uuid.UUID) error
}

// credentialService implements CredentialService.
type credentialService struct {
	repo      repositories.CredentialRepository
	encryptor *crypto.CredentialEncryptor
	auditor   *audit.SecurityAuditor
	logger    *zap.Logger
}

// NewCredentialService creates a new credential service.
func NewCredentialService(
	repo repositories.CredentialRepository,
	encryptor *crypto.CredentialEncryptor,
	logger *zap.Logger,
) CredentialService {
	return &credentialService{
		repo:      repo,
		encryptor: encryptor,
		auditor:   audit.NewSecurityAuditor(logger),
		logger:    logger,
	}
}

func (s *credentialService) Create(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) (*MaskedCredential, error) {
	if err := provider.ValidateKeyFormat(apiKey); err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.Encrypt(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}

	cred := &models.Credential{
		OrganizationID:  orgID,
		Provider:        provider,
		EncryptedAPIKey: encrypted,
		DefaultModel:    defaultModel,
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, cred); err != nil {
		return nil, err
	}

	s.auditor.LogCredentialEvent(ctx, audit.EventCredentialCreated, orgID, audit.CredentialDetails{
		CredentialID: cred.ID,
		Provider:     provider.String(),
	})

	return &MaskedCredential{Credential: cred, MaskedAPIKey: crypto.MaskKey(apiKey)}, nil
}

func (s *credentialService) Rotate(ctx context.Context, orgID uuid.UUID, provider models.Provider, apiKey, defaultModel string) error {
	if err := provider.ValidateKeyFormat(apiKey); err != nil {
		return err
	}

	cred, err := s.repo.GetActive(ctx, orgID, provider)
	if err != nil {
		return err
	}

	encrypted, err := s.encryptor.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt api key: %w", err)
	}

	if defaultModel == "" {
		defaultModel = cred.DefaultModel
	}

	if err := s.repo.UpdateKey(ctx, orgID, cred.ID, encrypted, defaultModel); err != nil {
		return err
	}

	s.auditor.LogCredentialEvent(ctx, audit.EventCredentialRotated, orgID, audit.CredentialDetails{
		CredentialID: cred.ID,
		Provider:     provider.String(),
	})

	return nil
}

func (s *credentialService) GetActiveKey(ctx context.Context, orgID uuid.UUID, provider models.Provider) (string, string, error) {
	cred, err := s.repo.GetActive(ctx, orgID, provider)
	if err != nil {
		return "", "", err
	}

	plaintext, err := s.encryptor.Decrypt(cred.EncryptedAPIKey)
	if err != nil {
		s.auditor.LogCredentialUnusable(ctx, orgID, audit.CredentialDetails{
			CredentialID: cred.ID,
			Provider:     provider.String(),
		})
		return "", "", fmt.Errorf("credential for %s is unusable: %w", provider, err)
	}

	return plaintext, cred.DefaultModel, nil
}

func (s *credentialService) List(ctx context.Context, orgID uuid.UUID) ([]*MaskedCredential, error) {
	creds, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, err
	}

	masked := make([]*MaskedCredential, 0, len(creds))
	for _, cred := range creds {
		plaintext, err := s.encryptor.Decrypt(cred.EncryptedAPIKey)
		if err != nil {
			// A stale key (encrypted under a rotated master key) still
			// lists, just with nothing to show.
			s.logger.Warn("credential cannot be decrypted for display",
				zap.String("credential_id", cred.ID.String()),
				zap.String("provider", cred.Provider.String()))
			masked = append(masked, &MaskedCredential{Credential: cred, MaskedAPIKey: ""})
			continue
		}
		masked = append(masked, &MaskedCredential{Credential: cred, MaskedAPIKey: crypto.MaskKey(plaintext)})
	}

	return masked, nil
}

func (s *credentialService) Deactivate(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, orgID, id); err != nil {
		return err
	}

	s.auditor.LogCredentialEvent(ctx, audit.EventCredentialDeactivated, orgID, audit.CredentialDetails{
		CredentialID: id,
	})

	return nil
}

// Ensure credentialService implements CredentialService at compile time.
var _ CredentialService = (*credentialService)(nil)
