package mock

import "github.com/fwojciec/harvest"

var _ harvest.Distiller = (*Distiller)(nil)

// Distiller is a mock implementation of harvest.Distiller.
type Distiller struct {
	DistillFn func(html string) (*harvest.Distillation, error)
}

func (d *Distiller) Distill(html string) (*harvest.Distillation, error) {
	return d.DistillFn(html)
}
