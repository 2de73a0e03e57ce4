// Package gemini implements harvest.Model using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/harvest"
	"google.golang.org/genai"
)

// DefaultModel balances cost and extraction quality.
const DefaultModel = "gemini-2.5-flash"

// Ensure Model implements harvest.Model at compile time.
var _ harvest.Model = (*Model)(nil)

// Model resolves schema fields by calling the Gemini API.
type Model struct {
	client *genai.Client
	model  string
}

// Option configures a Model.
type Option func(*Model)

// WithModel overrides the default model ID.
func WithModel(model string) Option {
	return func(m *Model) { m.model = model }
}

// NewModel creates a Model backed by the given genai client.
func NewModel(client *genai.Client, opts ...Option) *Model {
	m := &Model{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Extract asks the model to fill req.Schema from req.Content.
func (m *Model) Extract(ctx context.Context, req *harvest.ModelRequest) (*harvest.ModelResponse, error) {
	if req.Schema == nil || len(req.Schema.Fields) == 0 {
		return nil, harvest.Errorf(harvest.EINVALID, "model request requires at least one field")
	}
	if req.Content == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "model request requires content")
	}

	prompt := BuildUserPrompt(req)
	config := BuildConfig()

	result, err := m.client.Models.GenerateContent(ctx, m.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, harvest.Errorf(harvest.EMODEL, "gemini: %v", err)
	}
	if result == nil {
		return nil, harvest.Errorf(harvest.EMODEL, "gemini returned nil result")
	}

	payload, err := harvest.DecodeModelJSON(result.Text())
	if err != nil {
		return nil, err
	}

	resp := &harvest.ModelResponse{
		Fields:     payload.Fields,
		Confidence: payload.Confidence,
		Model:      m.model,
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = harvest.TokenUsage{
			InputTokens:          int64(u.PromptTokenCount),
			OutputTokens:         int64(u.CandidatesTokenCount),
			CacheReadInputTokens: int64(u.CachedContentTokenCount),
		}
	}
	return resp, nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a data extraction assistant. You extract structured fields from web page content. Extract only from the provided document; never invent values. Use null for a field when the document does not contain it. For numbers and currency amounts, use raw numbers without formatting. For dates, use ISO format (YYYY-MM-DD).",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildUserPrompt builds the user prompt containing the document, the field
// specifications, and the response format.
func BuildUserPrompt(req *harvest.ModelRequest) string {
	var sb strings.Builder
	sb.WriteString("<document>\n")
	if req.URL != "" {
		fmt.Fprintf(&sb, "<source>%s</source>\n", req.URL)
	}
	fmt.Fprintf(&sb, "<content>%s</content>\n", req.Content)
	sb.WriteString("</document>\n\n")

	sb.WriteString("Extract the following fields from the document:\n")
	for _, f := range req.Schema.Fields {
		fmt.Fprintf(&sb, "- %s (%s", f.Name, f.Type)
		if f.Required {
			sb.WriteString(", required")
		}
		sb.WriteString(")")
		if f.Hint != "" {
			fmt.Fprintf(&sb, ": %s", f.Hint)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nRespond with a JSON object of this shape: ")
	sb.WriteString(`{"fields": {"<name>": <value or null>, ...}, "confidence": <0.0 to 1.0>}`)
	return sb.String()
}
