package harvest

import "context"

// DomainLimiter provides per-domain rate limiting so a batch of URLs
// from one site doesn't hammer it.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
