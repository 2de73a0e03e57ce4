package harvest

import (
	"net/http"
	"time"
)

// Renderer identifies the fetch tier that produced a document.
type Renderer string

// Fetch tiers.
const (
	RendererHTTP    Renderer = "http"
	RendererBrowser Renderer = "browser"
)

// Document represents a fetched web page awaiting extraction.
// It is owned by the worker that fetched it and is never mutated
// after creation.
type Document struct {
	// URL is the requested address.
	URL string

	// FinalURL is the address after redirects. Equal to URL when no
	// redirect occurred.
	FinalURL string

	// HTML is the raw response body.
	HTML string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Header holds the response headers of the final response.
	Header http.Header

	// Renderer records which fetch tier produced the document.
	Renderer Renderer

	// ContentHash fingerprints HTML for change detection.
	ContentHash string

	// FetchedAt is the completion time of the fetch.
	FetchedAt time.Time
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.HTML == "" {
		return Errorf(EINVALID, "document HTML required")
	}
	return nil
}
