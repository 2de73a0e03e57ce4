package extract

import (
	"context"
	"errors"

	"github.com/fwojciec/harvest"
)

// escalate sends the unresolved and low-confidence fields to the model
// and merges what comes back. Budget refusals and model failures leave
// the extraction as it was.
func (e *Engine) escalate(ctx context.Context, doc *harvest.Document, schema *harvest.Schema, extraction *harvest.Extraction, threshold float64) error {
	needs := escalationFields(extraction.Fields, schema, threshold)
	if len(needs) == 0 {
		e.recordCheap(doc, schema)
		return nil
	}
	sub := schema.Subset(needs)
	content := e.prepareContent(doc)

	if e.Tracker != nil && !e.Tracker.Allow(e.Tracker.Estimate(len(content), len(sub.Fields))) {
		e.recordCheap(doc, schema)
		return nil
	}

	resp, err := e.Model.Extract(ctx, &harvest.ModelRequest{
		URL:     doc.URL,
		Content: content,
		Schema:  sub,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		extraction.Degraded = true
		e.recordCheap(doc, schema)
		return nil
	}

	if e.Tracker != nil {
		extraction.CostUSD = e.Tracker.RecordEscalation(resp.Model, resp.Usage, len(sub.Fields), len(schema.Fields))
	}

	confidence := resp.Confidence
	if confidence <= 0 {
		confidence = e.EscalatedConfidence
	}
	if confidence <= 0 {
		confidence = DefaultEscalatedConfidence
	}

	var escalated []harvest.ExtractedField
	for name, value := range resp.Fields {
		if value == nil {
			continue
		}
		if _, ok := sub.Field(name); !ok {
			continue
		}
		escalated = append(escalated, harvest.ExtractedField{
			Name:       name,
			Value:      value,
			Source:     harvest.SourceEscalated,
			Confidence: confidence,
		})
	}

	existing := make([]harvest.ExtractedField, 0, len(extraction.Fields))
	for _, f := range extraction.Fields {
		existing = append(existing, f)
	}
	extraction.Fields = Merge(existing, escalated)
	extraction.Confidence = Score(extraction.Fields, schema)
	extraction.Escalated = true
	return nil
}

// prepareContent reduces a document to compact model input: distilled
// main content, converted to markdown, truncated to the configured cap.
// Preparation failures fall back to truncated raw HTML.
func (e *Engine) prepareContent(doc *harvest.Document) string {
	content := doc.HTML
	if e.Distiller != nil {
		if d, err := e.Distiller.Distill(doc.HTML); err == nil && d.ContentHTML != "" {
			content = d.ContentHTML
			if e.Converter != nil {
				if md, err := e.Converter.Convert(d.ContentHTML); err == nil && md != "" {
					content = md
				}
			}
		}
	}
	return truncate(content, e.maxContentLen())
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return s[:limit]
}
