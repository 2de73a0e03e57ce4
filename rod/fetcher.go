package rod

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
// Kept consistent with http.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser
// automation. It is the expensive tier: the browser launches on the
// first Fetch, not at construction, so runs where every page is static
// never start Chrome. Fetcher is safe for concurrent use by multiple
// goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds one page render.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithBrowserManager substitutes the browser lifecycle manager, for
// callers that tune recycling.
func WithBrowserManager(bm *BrowserManager) Option {
	return func(f *Fetcher) {
		f.manager = bm
	}
}

// NewFetcher creates a new browser-rendering Fetcher.
// Close must be called when the Fetcher is no longer needed.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.manager == nil {
		f.manager = NewBrowserManager()
	}
	return f
}

// Fetch navigates to the URL and returns the rendered page.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*harvest.Document, error) {
	if f.closed.Load() {
		return nil, harvest.Errorf(harvest.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, err := f.manager.Browser()
	if err != nil {
		return nil, harvest.FetchErrorf(0, "browser unavailable: %v", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, harvest.FetchErrorf(0, "opening page for %s: %v", url, err)
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, fetchErr(ctx, url, "navigating to", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fetchErr(ctx, url, "rendering", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fetchErr(ctx, url, "reading", err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	f.manager.PageDone()

	// A rendered page implies a served response; the protocol does not
	// surface the status code, so a loaded page counts as OK.
	return &harvest.Document{
		URL:        url,
		FinalURL:   finalURL,
		HTML:       html,
		StatusCode: http.StatusOK,
		Renderer:   harvest.RendererBrowser,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// fetchErr keeps context errors intact so callers can tell cancellation
// from site failure.
func fetchErr(ctx context.Context, url, verb string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return harvest.FetchErrorf(0, "%s %s: %v", verb, url, err)
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the browser launcher's process ID, or zero when no
// browser has been launched. Exists for tests verifying cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
