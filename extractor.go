package harvest

// Extractor is a cheap, deterministic extraction strategy.
// Implementations are pure: no network access, no model calls.
type Extractor interface {
	// Extract returns candidate values for schema fields found in the
	// document. Fields with no match yield no candidate rather than an
	// error. An EPARSE error means the document could not be processed
	// at all; the caller degrades to other strategies.
	Extract(doc *Document, schema *Schema) ([]ExtractedField, error)

	// Source identifies the strategy for provenance and tie-breaking.
	Source() Source
}
