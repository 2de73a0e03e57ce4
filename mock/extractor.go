package mock

import "github.com/fwojciec/harvest"

var _ harvest.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of harvest.Extractor.
type Extractor struct {
	ExtractFn func(doc *harvest.Document, schema *harvest.Schema) ([]harvest.ExtractedField, error)
	SourceFn  func() harvest.Source
}

func (e *Extractor) Extract(doc *harvest.Document, schema *harvest.Schema) ([]harvest.ExtractedField, error) {
	return e.ExtractFn(doc, schema)
}

func (e *Extractor) Source() harvest.Source {
	return e.SourceFn()
}
