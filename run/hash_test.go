package run_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/run"
	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	t.Parallel()

	t.Run("returns consistent hash for same content", func(t *testing.T) {
		t.Parallel()
		content := "<html><body>widget</body></html>"
		assert.Equal(t, run.ContentHash(content), run.ContentHash(content))
	})

	t.Run("returns different hashes for different content", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, run.ContentHash("content a"), run.ContentHash("content b"))
	})

	t.Run("returns hex string", func(t *testing.T) {
		t.Parallel()
		assert.Regexp(t, `^[0-9a-f]+$`, run.ContentHash("test"))
	})
}

func TestSchemaHash(t *testing.T) {
	t.Parallel()

	t.Run("is stable across calls", func(t *testing.T) {
		t.Parallel()
		schema := productSchema()
		assert.Equal(t, run.SchemaHash(schema), run.SchemaHash(schema))
	})

	t.Run("changes when a field changes", func(t *testing.T) {
		t.Parallel()

		a := &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
		}}
		b := &harvest.Schema{Fields: []harvest.Field{
			{Name: "name", Type: harvest.TypeString},
		}}

		assert.NotEqual(t, run.SchemaHash(a), run.SchemaHash(b))
	})

	t.Run("is sensitive to field order", func(t *testing.T) {
		t.Parallel()

		a := &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
			{Name: "price", Type: harvest.TypeCurrency},
		}}
		b := &harvest.Schema{Fields: []harvest.Field{
			{Name: "price", Type: harvest.TypeCurrency},
			{Name: "title", Type: harvest.TypeString},
		}}

		assert.NotEqual(t, run.SchemaHash(a), run.SchemaHash(b))
	})
}
