// Package slog provides logging decorators for the root interfaces.
// Core packages never log; composition happens in cmd.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingFetcher implements harvest.Fetcher.
var _ harvest.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-fetch logging.
type LoggingFetcher struct {
	next   harvest.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next harvest.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL, outcome and timing, and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (doc *harvest.Document, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		var renderer harvest.Renderer
		if doc != nil {
			bytes = len(doc.HTML)
			status = doc.StatusCode
			renderer = doc.Renderer
		}
		f.logger.Info("fetch",
			"url", url,
			"bytes", bytes,
			"status", status,
			"renderer", renderer,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
