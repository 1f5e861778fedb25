package llm

import (
	"context"

	"github.com/spincoach-ai/engine/pkg/models"
)

// MockProviderClient is a configurable mock for testing LLM-backed
// functionality. Set the function field to control behavior in tests.
type MockProviderClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)

	// MockEndpoint is returned by Endpoint. Defaults to "http://mock-endpoint".
	MockEndpoint string

	// Call tracking for verification
	CompleteCalls int
}

// NewMockProviderClient creates a new mock with sensible defaults.
func NewMockProviderClient() *MockProviderClient {
	return &MockProviderClient{
		MockEndpoint: "http://mock-endpoint",
	}
}

// Complete implements ProviderClient.
func (m *MockProviderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Endpoint implements ProviderClient.
func (m *MockProviderClient) Endpoint() string {
	if m.MockEndpoint == "" {
		return "http://mock-endpoint"
	}
	return m.MockEndpoint
}

// MockClientFactory returns a fixed client regardless of provider.
type MockClientFactory struct {
	Client ProviderClient
	Err    error

	ClientForCalls int
}

// ClientFor implements ProviderClientFactory.
func (m *MockClientFactory) ClientFor(provider models.Provider, apiKey string) (ProviderClient, error) {
	m.ClientForCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Client, nil
}

// Ensure MockClientFactory implements ProviderClientFactory at compile time.
var _ ProviderClientFactory = (*MockClientFactory)(nil)
