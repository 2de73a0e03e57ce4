package harvest

// Money is a validated currency amount.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Validation is the outcome of checking merged fields against a schema.
// Data contains one entry per field that passed validation; fields that
// failed appear in Errors and are excluded from Data.
type Validation struct {
	// Data holds cleaned, type-coerced values keyed by field name.
	Data map[string]any

	// Errors lists violations on required fields and failed coercions.
	Errors []string

	// Warnings lists non-fatal issues (missing optional fields,
	// truncated strings).
	Warnings []string

	// Confidence scores overall data quality in [0, 1].
	Confidence float64
}

// Valid reports whether validation produced no errors.
func (v *Validation) Valid() bool {
	return len(v.Errors) == 0
}
