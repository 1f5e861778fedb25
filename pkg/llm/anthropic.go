package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// anthropicMaxTokens caps completion length. Score+coaching payloads
// are small; this leaves generous headroom.
const anthropicMaxTokens = 4096

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	logger *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		logger: logger.Named("llm-anthropic"),
	}, nil
}

// Complete sends a messages request and returns the raw text. Anthropic
// has no JSON response mode; WantJSON relies on prompt instructions and
// the caller's recovery parsing.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	temperature := req.Temperature

	c.logger.Debug("completion request",
		zap.String("model", req.Model),
		zap.Int("prompt_len", len(req.User)),
		zap.Float32("temperature", temperature))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System,
		MaxTokens:   anthropicMaxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.User),
		},
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		provErr := classifyAnthropicError(err)
		provErr.Model = req.Model
		return "", provErr
	}

	text := firstTextBlock(resp)
	if text == "" {
		return "", NewError(ErrorKindUnknown, "no text content in response", false, nil)
	}

	c.logger.Info("completion request completed",
		zap.String("model", req.Model),
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Endpoint returns the configured endpoint.
func (c *AnthropicClient) Endpoint() string {
	return "https://api.anthropic.com/v1"
}

// firstTextBlock returns the first text content block of a response.
func firstTextBlock(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// classifyAnthropicError maps SDK error types onto the shared
// classification before falling back to string matching.
func classifyAnthropicError(err error) *Error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthenticationErr(), apiErr.IsPermissionErr():
			return NewError(ErrorKindAuth, "authentication failed", false, err)
		case apiErr.IsRateLimitErr():
			return NewError(ErrorKindRateLimit, "rate limited", true, err)
		case apiErr.IsOverloadedErr():
			return NewError(ErrorKindRateLimit, "provider overloaded", true, err)
		case apiErr.IsApiErr():
			return NewError(ErrorKindUnknown, "server error", true, err)
		}
	}
	return ClassifyError(err)
}
