package main_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdCheck(t *testing.T) {
	t.Parallel()

	t.Run("prints the field table for a valid schema", func(t *testing.T) {
		t.Parallel()

		schemaJSON := `{
		  "fields": [
		    {"name": "title", "type": "string", "required": true, "hint": "The product name"},
		    {"name": "price", "type": "currency", "required": true},
		    {"name": "sku", "type": "string", "format": "^[A-Z0-9-]+$"}
		  ]
		}`

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.CheckCmd{Schema: writeSchema(t, schemaJSON)}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "Schema OK: 3 fields (2 required), hash ")
		assert.Contains(t, out, "title")
		assert.Contains(t, out, "string, required")
		assert.Contains(t, out, "currency, required")
		assert.Contains(t, out, "hint: The product name")
		assert.Contains(t, out, "format: ^[A-Z0-9-]+$")
		assert.Empty(t, stderr.String())
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.CheckCmd{Schema: writeSchema(t, `{"fields": [`)}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Equal(t, 2, main.ExitCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("rejects duplicate field names", func(t *testing.T) {
		t.Parallel()

		schemaJSON := `{
		  "fields": [
		    {"name": "title", "type": "string"},
		    {"name": "title", "type": "string"}
		  ]
		}`

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.CheckCmd{Schema: writeSchema(t, schemaJSON)}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Contains(t, stderr.String(), "duplicate schema field")
	})

	t.Run("fails for a missing file", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.CheckCmd{Schema: filepath.Join(t.TempDir(), "absent.json")}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Equal(t, 2, main.ExitCode(err))
	})
}
