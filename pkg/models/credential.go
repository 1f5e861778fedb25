package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a supported LLM vendor. It is a closed set: values are
// constructed through ParseProvider at the persistence and API boundaries and
// never stored as free-form strings in business logic.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// Providers lists all supported providers in display order.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

// ParseProvider converts a stored or user-supplied string into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	default:
		return "", fmt.Errorf("unsupported llm provider %q", s)
	}
}

// String returns the stored form of the provider.
func (p Provider) String() string {
	return string(p)
}

// DetectProvider infers the provider from a model name prefix, e.g.
// "gpt-4o-mini" is OpenAI, "claude-sonnet-4-5" is Anthropic,
// "gemini-1.5-pro" is Google.
func DetectProvider(model string) (Provider, error) {
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "gpt-"), strings.HasPrefix(lower, "o1-"),
		strings.HasPrefix(lower, "o3-"), strings.HasPrefix(lower, "text-davinci"):
		return ProviderOpenAI, nil
	case strings.HasPrefix(lower, "claude-"):
		return ProviderAnthropic, nil
	case strings.HasPrefix(lower, "gemini-"):
		return ProviderGoogle, nil
	default:
		return "", fmt.Errorf("cannot determine provider for model %q (supported prefixes: gpt-, o1-, claude-, gemini-)", model)
	}
}

// ValidateKeyFormat performs a cheap shape check on an API key before it is
// encrypted and stored. It catches pasted-into-the-wrong-box mistakes, not
// key validity.
func (p Provider) ValidateKeyFormat(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key must not be empty")
	}
	switch p {
	case ProviderOpenAI:
		if len(apiKey) < 20 || !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("openai api keys start with sk- and are at least 20 characters")
		}
	case ProviderAnthropic:
		if len(apiKey) < 20 || !strings.HasPrefix(apiKey, "sk-ant-") {
			return fmt.Errorf("anthropic api keys start with sk-ant- and are at least 20 characters")
		}
	case ProviderGoogle:
		if len(apiKey) < 10 {
			return fmt.Errorf("google api key appears too short")
		}
	}
	return nil
}

// Credential stores an organization's encrypted API key for one provider.
// At most one active credential may exist per (organization, provider) pair;
// the plaintext key never leaves the credential service except for LLM calls.
type Credential struct {
	ID              uuid.UUID `json:"id"`
	OrganizationID  uuid.UUID `json:"organization_id"`
	Provider        Provider  `json:"provider"`
	EncryptedAPIKey string    `json:"-"` // never serialized
	DefaultModel    string    `json:"default_model,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
