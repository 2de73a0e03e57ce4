package extract

import "github.com/fwojciec/harvest"

// Score computes document confidence: the mean of per-field confidence
// over required fields, with unresolved fields contributing zero. When
// the schema marks nothing required, the mean runs over all fields so
// escalation still has a signal.
func Score(fields map[string]harvest.ExtractedField, schema *harvest.Schema) float64 {
	scored := schema.Required()
	if len(scored) == 0 {
		scored = schema.Fields
	}
	if len(scored) == 0 {
		return 0
	}

	var sum float64
	for _, f := range scored {
		if candidate, ok := fields[f.Name]; ok {
			sum += candidate.Confidence
		}
	}
	return sum / float64(len(scored))
}

// escalationFields lists the fields worth asking a model about:
// unresolved fields and fields whose candidate sits below the threshold.
// Order follows the schema.
func escalationFields(fields map[string]harvest.ExtractedField, schema *harvest.Schema, threshold float64) []string {
	var out []string
	for _, f := range schema.Fields {
		candidate, ok := fields[f.Name]
		if !ok || candidate.Confidence < threshold {
			out = append(out, f.Name)
		}
	}
	return out
}
