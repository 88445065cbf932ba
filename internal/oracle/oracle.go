// Package oracle calls the text-classification model and parses
// relationship classifications out of its free-text replies.
package oracle

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModel is the chat model used for classification.
	DefaultModel = openai.ChatModelGPT4oMini

	// DefaultTemperature keeps classifications near-deterministic.
	DefaultTemperature = 0.1

	// DefaultMaxTokens bounds the reply; a classification JSON object
	// plus a short evidence quote fits comfortably.
	DefaultMaxTokens = 500
)

// Role tags for oracle messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one role-tagged message sent to the oracle.
type Message struct {
	Role    string
	Content string
}

// Completer produces free-text completions for role-tagged messages.
// *Client satisfies it; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client wraps the OpenAI chat-completions API.
type Client struct {
	api         openai.Client
	model       openai.ChatModel
	temperature float64
	maxTokens   int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel overrides the chat model.
func WithModel(model openai.ChatModel) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens overrides the completion token budget.
func WithMaxTokens(n int64) ClientOption {
	return func(c *Client) { c.maxTokens = n }
}

// WithRequestOptions passes options through to the underlying OpenAI
// client (base URL, custom HTTP client).
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(c *Client) { c.api = openai.NewClient(opts...) }
}

// NewClient creates an oracle client. The API key is read from the
// OPENAI_API_KEY environment variable unless overridden via
// WithRequestOptions.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		api:         openai.NewClient(option.WithAPIKey(os.Getenv("OPENAI_API_KEY"))),
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the messages and returns the raw text reply.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               c.model,
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("oracle completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("oracle completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
