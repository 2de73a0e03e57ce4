package harvest

// Source identifies the extraction strategy that produced a value.
type Source string

// Extraction strategies, cheapest first.
const (
	SourceStructural Source = "structural"
	SourcePattern    Source = "pattern"
	SourceEscalated  Source = "escalated"
)

// Precedence orders strategies for merge tie-breaking. When two candidates
// for the same field carry equal confidence, the higher precedence wins.
func (s Source) Precedence() int {
	switch s {
	case SourceStructural:
		return 3
	case SourcePattern:
		return 2
	case SourceEscalated:
		return 1
	}
	return 0
}

// ExtractedField is a candidate value for one schema field.
type ExtractedField struct {
	// Name is the schema field name.
	Name string

	// Value is the raw extracted value. Validation coerces it to the
	// field's declared type.
	Value any

	// Source records which strategy produced the value.
	Source Source

	// Confidence is the strategy's self-reported certainty in [0, 1].
	Confidence float64
}

// Extraction holds the merged candidates for one document.
type Extraction struct {
	// Fields maps field name to the winning candidate. Absent names
	// are unresolved.
	Fields map[string]ExtractedField

	// Confidence is the document-level score over required fields.
	Confidence float64

	// Escalated reports whether a model call contributed candidates.
	Escalated bool

	// Degraded reports that a strategy failed along the way: an
	// extractor could not process the document, or a model call failed
	// and its fields stayed unresolved.
	Degraded bool

	// CostUSD is the model spend attributed to this document.
	// Zero when no escalation happened.
	CostUSD float64
}

// Missing returns schema field names with no resolved candidate,
// in schema order.
func (e *Extraction) Missing(schema *Schema) []string {
	var out []string
	for _, f := range schema.Fields {
		if _, ok := e.Fields[f.Name]; !ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// Values returns resolved field values keyed by name.
func (e *Extraction) Values() map[string]any {
	out := make(map[string]any, len(e.Fields))
	for name, f := range e.Fields {
		out[name] = f.Value
	}
	return out
}
