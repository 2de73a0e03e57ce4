package http

import (
	"net/http"
	"strings"
)

// BlockKind labels the anti-bot pattern a response matched.
type BlockKind string

// Recognized block patterns.
const (
	BlockCloudflare BlockKind = "cloudflare"
	BlockCaptcha    BlockKind = "captcha"
	BlockJSShell    BlockKind = "js_shell"
)

// jsShellMaxLen is the body size under which a page is suspiciously
// small for real content and likely a JavaScript bootstrap shell.
const jsShellMaxLen = 2000

// DetectBlock checks an HTTP response for signs of anti-bot protection.
// Sites that block scrapers often answer 200 with a challenge page, so
// success statuses are inspected too.
func DetectBlock(resp *http.Response, body []byte) (BlockKind, bool) {
	if resp == nil {
		return "", false
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return BlockCloudflare, true
		}
		if resp.Header.Get("server") == "cloudflare" {
			return BlockCloudflare, true
		}
	}

	lower := strings.ToLower(string(body))

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
		return BlockCloudflare, true
	}

	// Captcha markers.
	if strings.Contains(lower, "captcha") {
		return BlockCaptcha, true
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < jsShellMaxLen {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell, true
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return BlockJSShell, true
		}
	}

	return "", false
}
