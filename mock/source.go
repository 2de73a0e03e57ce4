package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.URLSource = (*URLSource)(nil)

// URLSource is a mock implementation of harvest.URLSource.
type URLSource struct {
	DiscoverFn func(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error)
}

func (s *URLSource) Discover(ctx context.Context, baseURL string, filter *harvest.URLFilter) ([]string, error) {
	return s.DiscoverFn(ctx, baseURL, filter)
}
