package extract

import "github.com/fwojciec/harvest"

// Merge combines candidate sets into one winner per field. The highest
// confidence wins; on equal confidence the cheaper strategy wins
// (structural > pattern > escalated). A merged value is never replaced
// by a lower-confidence candidate.
func Merge(sets ...[]harvest.ExtractedField) map[string]harvest.ExtractedField {
	merged := make(map[string]harvest.ExtractedField)
	for _, set := range sets {
		for _, candidate := range set {
			existing, ok := merged[candidate.Name]
			if !ok || wins(candidate, existing) {
				merged[candidate.Name] = candidate
			}
		}
	}
	return merged
}

// wins reports whether the candidate beats the existing winner.
func wins(candidate, existing harvest.ExtractedField) bool {
	if candidate.Confidence != existing.Confidence {
		return candidate.Confidence > existing.Confidence
	}
	return candidate.Source.Precedence() > existing.Source.Precedence()
}
