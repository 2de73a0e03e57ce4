package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdPreview(t *testing.T) {
	t.Parallel()

	t.Run("prints discovered urls", func(t *testing.T) {
		t.Parallel()

		source := &mock.URLSource{
			DiscoverFn: func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
				assert.Equal(t, "https://shop.example.com", baseURL)
				return []string{
					"https://shop.example.com/products/widget",
					"https://shop.example.com/products/gadget",
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PreviewCmd{Sitemap: "https://shop.example.com"}

		err := cmd.Run(newDeps(nil, source, stdout, stderr))
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "https://shop.example.com/products/widget")
		assert.Contains(t, stdout.String(), "https://shop.example.com/products/gadget")
		assert.Empty(t, stderr.String())
	})

	t.Run("passes compiled filters to the source", func(t *testing.T) {
		t.Parallel()

		var receivedFilter *harvest.URLFilter
		source := &mock.URLSource{
			DiscoverFn: func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
				receivedFilter = filter
				return []string{"https://shop.example.com/products/widget"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PreviewCmd{
			Sitemap: "https://shop.example.com",
			Filter:  []string{"/products/", "/catalog/"},
		}

		err := cmd.Run(newDeps(nil, source, stdout, stderr))
		require.NoError(t, err)

		require.NotNil(t, receivedFilter)
		require.Len(t, receivedFilter.Include, 2)
		assert.Equal(t, "/products/", receivedFilter.Include[0].String())
		assert.Equal(t, "/catalog/", receivedFilter.Include[1].String())
	})

	t.Run("rejects invalid filter patterns", func(t *testing.T) {
		t.Parallel()

		source := &mock.URLSource{
			DiscoverFn: func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
				t.Error("discovery should not run with a broken filter")
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PreviewCmd{
			Sitemap: "https://shop.example.com",
			Filter:  []string{"["},
		}

		err := cmd.Run(newDeps(nil, source, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Equal(t, 2, main.ExitCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("reports discovery failures", func(t *testing.T) {
		t.Parallel()

		source := &mock.URLSource{
			DiscoverFn: func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
				return nil, harvest.FetchErrorf(503, "HTTP 503 for %s", baseURL)
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PreviewCmd{Sitemap: "https://shop.example.com"}

		err := cmd.Run(newDeps(nil, source, stdout, stderr))
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, stdout.String())
	})

	t.Run("notes when nothing was discovered", func(t *testing.T) {
		t.Parallel()

		source := &mock.URLSource{
			DiscoverFn: func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
				return []string{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PreviewCmd{Sitemap: "https://shop.example.com"}

		err := cmd.Run(newDeps(nil, source, stdout, stderr))
		require.NoError(t, err)

		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "No URLs discovered.")
	})
}
