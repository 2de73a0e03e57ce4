package http_test

import (
	"net/http"
	"strings"
	"testing"

	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		header  http.Header
		body    string
		want    harvesthttp.BlockKind
		blocked bool
	}{
		{
			name:    "clean page",
			status:  200,
			body:    "<html><body><h1>Product</h1><p>" + strings.Repeat("Real content. ", 200) + "</p></body></html>",
			blocked: false,
		},
		{
			name:    "cloudflare 403 with cf-ray header",
			status:  403,
			header:  http.Header{"Cf-Ray": []string{"8d0a-IAD"}},
			body:    "<html>Access denied</html>",
			want:    harvesthttp.BlockCloudflare,
			blocked: true,
		},
		{
			name:    "cloudflare 503 with server header",
			status:  503,
			header:  http.Header{"Server": []string{"cloudflare"}},
			body:    "<html>Service unavailable</html>",
			want:    harvesthttp.BlockCloudflare,
			blocked: true,
		},
		{
			name:    "challenge page with 200",
			status:  200,
			body:    "<html><body>Checking your browser before accessing example.com</body></html>",
			want:    harvesthttp.BlockCloudflare,
			blocked: true,
		},
		{
			name:    "recaptcha interstitial",
			status:  200,
			body:    `<html><body><div class="g-recaptcha" data-sitekey="abc"></div></body></html>`,
			want:    harvesthttp.BlockCaptcha,
			blocked: true,
		},
		{
			name:    "javascript shell",
			status:  200,
			body:    `<html><head></head><body><noscript>Please enable JavaScript.</noscript><div id="root"></div></body></html>`,
			want:    harvesthttp.BlockJSShell,
			blocked: true,
		},
		{
			name:    "meta refresh shell",
			status:  200,
			body:    `<html><head><meta http-equiv="refresh" content="0;url=/app"></head><body></body></html>`,
			want:    harvesthttp.BlockJSShell,
			blocked: true,
		},
		{
			name:    "plain 403 without cloudflare markers",
			status:  403,
			body:    "<html><body>" + strings.Repeat("Forbidden for other reasons. ", 100) + "</body></html>",
			blocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}

			kind, blocked := harvesthttp.DetectBlock(resp, []byte(tt.body))

			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.want, kind)
		})
	}
}
