package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Model = (*Model)(nil)

// Model is a mock implementation of harvest.Model.
type Model struct {
	ExtractFn func(ctx context.Context, req *harvest.ModelRequest) (*harvest.ModelResponse, error)
}

func (m *Model) Extract(ctx context.Context, req *harvest.ModelRequest) (*harvest.ModelResponse, error) {
	return m.ExtractFn(ctx, req)
}
