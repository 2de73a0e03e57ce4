package harvest

import (
	"context"
	"encoding/json"
	"strings"
)

// ModelRequest asks a model to resolve schema fields from prepared
// document content. The schema is reduced: it contains only the fields
// cheap strategies left unresolved or uncertain.
type ModelRequest struct {
	// URL identifies the source document, for prompt context.
	URL string

	// Content is distilled, truncated document text or markdown.
	Content string

	// Schema lists only the fields the model should resolve.
	Schema *Schema
}

// TokenUsage reports billable token counts for one model call.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates usage from another call.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:              u.InputTokens + other.InputTokens,
		OutputTokens:             u.OutputTokens + other.OutputTokens,
		CacheCreationInputTokens: u.CacheCreationInputTokens + other.CacheCreationInputTokens,
		CacheReadInputTokens:     u.CacheReadInputTokens + other.CacheReadInputTokens,
	}
}

// ModelResponse carries extracted fields and accounting for one call.
type ModelResponse struct {
	// Fields maps field name to extracted value. Nulls are omitted.
	Fields map[string]any

	// Confidence is the model's self-reported certainty. Zero means
	// unreported; callers substitute the configured default.
	Confidence float64

	// Model is the identifier of the model that served the call.
	Model string

	// Usage reports billable tokens for the call.
	Usage TokenUsage
}

// Model resolves schema fields from document content.
// Implementations call a hosted language model; one call per document.
type Model interface {
	// Extract asks the model to fill req.Schema from req.Content.
	// Returns EMODEL if the call fails or the completion cannot be
	// decoded.
	Extract(ctx context.Context, req *ModelRequest) (*ModelResponse, error)
}

// ModelPayload is the JSON document models are instructed to return.
type ModelPayload struct {
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
}

// DecodeModelJSON parses a model completion into a payload. Completions
// are messy: the JSON may be wrapped in markdown code fences or
// surrounded by prose, and some models return the field map without the
// fields wrapper. All three forms decode.
func DecodeModelJSON(raw string) (*ModelPayload, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, Errorf(EMODEL, "no JSON object in model output")
	}
	s = s[start : end+1]

	var p ModelPayload
	if err := json.Unmarshal([]byte(s), &p); err == nil && p.Fields != nil {
		return &p, nil
	}

	var bare map[string]any
	if err := json.Unmarshal([]byte(s), &bare); err != nil {
		return nil, Errorf(EMODEL, "model output is not valid JSON: %v", err)
	}
	return &ModelPayload{Fields: bare}, nil
}
