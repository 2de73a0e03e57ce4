package run

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure Chain implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Chain)(nil)

// Chain tries fetch tiers in order: plain HTTP first, then browser
// rendering. Transient failures are retried with backoff on the same
// tier; anything else falls through to the next tier, except statuses a
// different tier cannot change (400, 401, 404, 405, 410), which fail
// immediately.
type Chain struct {
	// Tiers are tried in order. The first tier that returns a document
	// wins.
	Tiers []harvest.Fetcher

	// Limiter, when set, gates every attempt by the target domain.
	Limiter harvest.DomainLimiter

	// Delays are the backoff waits between retries of one tier.
	// Nil means DefaultRetryDelays.
	Delays []time.Duration
}

// Fetch retrieves the document at url through the tier chain.
func (c *Chain) Fetch(ctx context.Context, rawURL string) (*harvest.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid url %q: %v", rawURL, err)
	}

	delays := c.Delays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	var lastErr error
	for _, tier := range c.Tiers {
		doc, err := c.fetchTier(ctx, tier, rawURL, u.Host, delays)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if harvest.ErrorCode(err) == harvest.EINVALID {
			return nil, err
		}
		lastErr = err
		if permanentStatus(harvest.ErrorStatus(err)) {
			break
		}
	}
	if lastErr == nil {
		return nil, harvest.FetchErrorf(0, "no fetch tier configured")
	}
	return nil, lastErr
}

// fetchTier runs one tier with retries. Only Retryable errors wait and
// try again.
func (c *Chain) fetchTier(ctx context.Context, tier harvest.Fetcher, rawURL, domain string, delays []time.Duration) (*harvest.Document, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, domain); err != nil {
				return nil, err
			}
		}

		doc, err := tier.Fetch(ctx, rawURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if !Retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return nil, lastErr
}

// Close releases every tier.
func (c *Chain) Close() error {
	var errs []error
	for _, tier := range c.Tiers {
		if err := tier.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
