// Package extract runs cheap extraction strategies over a document,
// merges their candidates, scores the result, and escalates
// low-confidence documents to a model — once, and only for the fields
// the cheap strategies could not settle.
package extract

import (
	"context"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/cost"
)

// Defaults applied when Engine fields are left zero.
const (
	DefaultThreshold           = 0.6
	DefaultEscalatedConfidence = 0.9
	DefaultMaxContentLen       = 8000
)

// Engine coordinates extraction for a single document.
type Engine struct {
	// Extractors are the cheap strategies, tried on every document.
	Extractors []harvest.Extractor

	// Model handles escalation. Nil disables escalation entirely.
	Model harvest.Model

	// Distiller and Converter prepare model input: boilerplate removal,
	// then markdown conversion. Either may be nil; raw HTML is the
	// fallback.
	Distiller harvest.Distiller
	Converter harvest.Converter

	// Tracker accounts for spend and enforces the run budget.
	Tracker *cost.Tracker

	// Threshold is the document confidence below which escalation runs.
	Threshold float64

	// EscalatedConfidence is assigned to model fields when the model
	// doesn't report its own confidence.
	EscalatedConfidence float64

	// MaxContentLen caps prepared model input, in bytes.
	MaxContentLen int
}

// Process extracts schema fields from one document. Strategy failures
// degrade rather than abort: a document that can't be parsed
// structurally still gets pattern extraction, and a failed model call
// leaves fields unresolved for validation to report. The only error
// returned is context cancellation.
func (e *Engine) Process(ctx context.Context, doc *harvest.Document, schema *harvest.Schema) (*harvest.Extraction, error) {
	extraction := &harvest.Extraction{}

	var sets [][]harvest.ExtractedField
	for _, x := range e.Extractors {
		fields, err := x.Extract(doc, schema)
		if err != nil {
			extraction.Degraded = true
			continue
		}
		sets = append(sets, fields)
	}
	extraction.Fields = Merge(sets...)
	extraction.Confidence = Score(extraction.Fields, schema)

	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	if extraction.Confidence >= threshold || e.Model == nil {
		e.recordCheap(doc, schema)
		return extraction, nil
	}

	if err := e.escalate(ctx, doc, schema, extraction, threshold); err != nil {
		return nil, err
	}
	return extraction, nil
}

// recordCheap accrues the escalate-everything baseline for a document
// that cost nothing.
func (e *Engine) recordCheap(doc *harvest.Document, schema *harvest.Schema) {
	if e.Tracker == nil {
		return
	}
	e.Tracker.RecordExtraction(min(len(doc.HTML), e.maxContentLen()), len(schema.Fields))
}

func (e *Engine) maxContentLen() int {
	if e.MaxContentLen > 0 {
		return e.MaxContentLen
	}
	return DefaultMaxContentLen
}

