package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/pawmart/pawmart/internal/config"
	"github.com/pawmart/pawmart/pkg/models"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
// The default configuration points at DashScope's compatible mode.
type OpenAIClient struct {
	client     *openai.Client
	timeout    time.Duration
	configured bool
}

// NewOpenAI builds a client from the upstream configuration.
func NewOpenAI(cfg config.UpstreamConfig) *OpenAIClient {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(c),
		timeout:    cfg.Timeout,
		configured: cfg.APIKey != "",
	}
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool { return c.configured }

// Complete sends one chat-completion request and returns the first
// choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []models.ChatMessage) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: oaMsgs,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{StatusCode: 502, Message: "upstream returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
