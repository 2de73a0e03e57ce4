package harvest

import "context"

// Fetcher retrieves web pages.
// Implementations may use plain HTTP or browser automation to handle
// JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the document at url. Transport failures, non-2xx
	// statuses, and bot-blocked responses return an EFETCH error; when
	// a response was received, its HTTP status is attached and available
	// via ErrorStatus.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Document, error)

	// Close releases fetcher resources (idle connections, browser
	// processes). Must be called when the Fetcher is no longer needed.
	Close() error
}
