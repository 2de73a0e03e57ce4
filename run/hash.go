package run

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
)

// ContentHash fingerprints fetched HTML for change detection.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// SchemaHash fingerprints a schema so run records can be matched to the
// schema that produced them. Field order is significant.
func SchemaHash(s *harvest.Schema) string {
	b, err := json.Marshal(s.Fields)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", xxhash.Sum64(b))
}
