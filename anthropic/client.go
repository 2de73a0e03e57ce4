// Package anthropic implements harvest.Model using the Claude Messages API.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/harvest"
)

// DefaultModel is the cheapest model that handles field extraction well.
const DefaultModel = "claude-3-5-haiku-20241022"

// DefaultMaxTokens bounds completion length. Escalations request a handful
// of fields, so completions stay short.
const DefaultMaxTokens = 1024

// Ensure Client implements harvest.Model at compile time.
var _ harvest.Model = (*Client)(nil)

// Client resolves schema fields by calling the Anthropic API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens overrides the completion token limit.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// NewClient creates a Client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract asks the model to fill req.Schema from req.Content.
func (c *Client) Extract(ctx context.Context, req *harvest.ModelRequest) (*harvest.ModelResponse, error) {
	if req.Schema == nil || len(req.Schema.Fields) == 0 {
		return nil, harvest.Errorf(harvest.EINVALID, "model request requires at least one field")
	}
	if req.Content == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "model request requires content")
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(0),
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(BuildUserPrompt(req))),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, harvest.Errorf(harvest.EMODEL, "anthropic: %v", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}

	payload, err := harvest.DecodeModelJSON(sb.String())
	if err != nil {
		return nil, err
	}

	return &harvest.ModelResponse{
		Fields:     payload.Fields,
		Confidence: payload.Confidence,
		Model:      string(msg.Model),
		Usage: harvest.TokenUsage{
			InputTokens:              msg.Usage.InputTokens,
			OutputTokens:             msg.Usage.OutputTokens,
			CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
		},
	}, nil
}
