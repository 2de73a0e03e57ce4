package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/cost"
)

// Ensure LoggingModel implements harvest.Model.
var _ harvest.Model = (*LoggingModel)(nil)

// LoggingModel wraps a Model with cost attribution logging.
type LoggingModel struct {
	next   harvest.Model
	logger *slog.Logger
}

// NewLoggingModel creates a new LoggingModel.
func NewLoggingModel(next harvest.Model, logger *slog.Logger) *LoggingModel {
	return &LoggingModel{next: next, logger: logger}
}

// Extract logs token usage and estimated spend for the call, and
// delegates to the wrapped model.
func (m *LoggingModel) Extract(ctx context.Context, req *harvest.ModelRequest) (resp *harvest.ModelResponse, err error) {
	defer func(begin time.Time) {
		var usage harvest.TokenUsage
		var model string
		if resp != nil {
			usage = resp.Usage
			model = resp.Model
		}
		m.logger.Info("escalation",
			"url", req.URL,
			"model", model,
			"fields", len(req.Schema.Fields),
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"cache_write_tokens", usage.CacheCreationInputTokens,
			"cache_read_tokens", usage.CacheReadInputTokens,
			"estimated_cost_usd", cost.Calculate(cost.PricingFor(model), usage),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Extract(ctx, req)
}
