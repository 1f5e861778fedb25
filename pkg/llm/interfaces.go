// Package llm provides provider clients for scoring transcripts and
// recovery parsing of their structured output.
package llm

import (
	"context"
)

// CompletionRequest describes a single completion call to a provider.
type CompletionRequest struct {
	System      string  // System prompt
	User        string  // User prompt
	Model       string  // Provider model name
	Temperature float32 // 0 for deterministic scoring
	WantJSON    bool    // Ask the provider for JSON-formatted output where supported
}

// ProviderClient defines the interface for LLM completion calls.
// Use this interface for dependency injection to enable mocking in tests.
type ProviderClient interface {
	// Complete sends a single completion request and returns the raw
	// response text. The text is not guaranteed to be bare JSON even
	// when WantJSON is set.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Endpoint returns the configured endpoint for logging.
	Endpoint() string
}

// Ensure implementations satisfy ProviderClient at compile time.
var (
	_ ProviderClient = (*OpenAIClient)(nil)
	_ ProviderClient = (*AnthropicClient)(nil)
	_ ProviderClient = (*MockProviderClient)(nil)
)
