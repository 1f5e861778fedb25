package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/models"
)

// defaultGoogleBaseURL is Gemini's OpenAI-compatible endpoint.
const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// ProviderClientFactory creates provider clients from plaintext keys.
// Use this interface for dependency injection and testing.
type ProviderClientFactory interface {
	ClientFor(provider models.Provider, apiKey string) (ProviderClient, error)
}

// ClientFactory creates provider clients. Google models are served
// through Gemini's OpenAI-compatible endpoint, so only two SDKs are
// involved for three providers.
type ClientFactory struct {
	openAIBaseURL string
	googleBaseURL string
	logger        *zap.Logger
}

// FactoryConfig carries per-provider base URL overrides. Empty values
// use each provider's public endpoint.
type FactoryConfig struct {
	OpenAIBaseURL string
	GoogleBaseURL string
}

// NewClientFactory creates a new factory.
func NewClientFactory(cfg FactoryConfig, logger *zap.Logger) *ClientFactory {
	googleBaseURL := cfg.GoogleBaseURL
	if googleBaseURL == "" {
		googleBaseURL = defaultGoogleBaseURL
	}
	return &ClientFactory{
		openAIBaseURL: cfg.OpenAIBaseURL,
		googleBaseURL: googleBaseURL,
		logger:        logger,
	}
}

// ClientFor returns a client for the provider using the given plaintext
// API key. The key is held only by the returned client, never logged.
func (f *ClientFactory) ClientFor(provider models.Provider, apiKey string) (ProviderClient, error) {
	switch provider {
	case models.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{APIKey: apiKey, BaseURL: f.openAIBaseURL}, f.logger)
	case models.ProviderAnthropic:
		return NewAnthropicClient(apiKey, f.logger)
	case models.ProviderGoogle:
		return NewOpenAIClient(OpenAIConfig{APIKey: apiKey, BaseURL: f.googleBaseURL}, f.logger)
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

// Ensure ClientFactory implements ProviderClientFactory at compile time.
var _ ProviderClientFactory = (*ClientFactory)(nil)
