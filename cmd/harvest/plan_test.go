package main_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/anthropic"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/cost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdPlan(t *testing.T) {
	t.Parallel()

	t.Run("estimates worst case and expected cost", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PlanCmd{
			Schema:     writeSchema(t, productSchemaJSON),
			URLs:       []string{"https://shop.example.com/widget", "https://shop.example.com/gadget"},
			Model:      anthropic.DefaultModel,
			CheapRate:  0.7,
			ContentLen: 8000,
		}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.NoError(t, err)

		perDoc := cost.New(anthropic.DefaultModel).Estimate(8000, 2)
		worst := perDoc * 2
		expected := worst * 0.3

		out := stdout.String()
		assert.Contains(t, out, "Model:     "+anthropic.DefaultModel)
		assert.Contains(t, out, "Schema:    2 fields (2 required)")
		assert.Contains(t, out, "Documents: 2")
		assert.Contains(t, out, fmt.Sprintf("$%.6f", perDoc))
		assert.Contains(t, out, fmt.Sprintf("Worst case (all escalate):    $%.4f", worst))
		assert.Contains(t, out, fmt.Sprintf("Expected (70%% cheap hits):    $%.4f", expected))
	})

	t.Run("counts duplicate urls once", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PlanCmd{
			Schema: writeSchema(t, productSchemaJSON),
			URLs: []string{
				"https://shop.example.com/widget",
				"https://shop.example.com/gadget",
				"https://shop.example.com/widget",
			},
			Model:      anthropic.DefaultModel,
			CheapRate:  0.7,
			ContentLen: 8000,
		}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Documents: 2")
	})

	t.Run("reads urls from a file", func(t *testing.T) {
		t.Parallel()

		urlsPath := filepath.Join(t.TempDir(), "urls.txt")
		content := "https://shop.example.com/widget\n\n# seasonal\nhttps://shop.example.com/gadget\n"
		require.NoError(t, os.WriteFile(urlsPath, []byte(content), 0o644))

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PlanCmd{
			Schema:     writeSchema(t, productSchemaJSON),
			URLsFile:   urlsPath,
			Model:      anthropic.DefaultModel,
			CheapRate:  0.7,
			ContentLen: 8000,
		}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Documents: 2")
	})

	t.Run("rejects an out-of-range cheap rate", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PlanCmd{
			Schema:     writeSchema(t, productSchemaJSON),
			URLs:       []string{"https://shop.example.com/widget"},
			Model:      anthropic.DefaultModel,
			CheapRate:  1.5,
			ContentLen: 8000,
		}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Equal(t, 2, main.ExitCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("requires at least one url", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		cmd := &main.PlanCmd{
			Schema:     writeSchema(t, productSchemaJSON),
			Model:      anthropic.DefaultModel,
			CheapRate:  0.7,
			ContentLen: 8000,
		}

		err := cmd.Run(newDeps(nil, nil, stdout, stderr))
		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no URLs to estimate")
	})
}

func TestCmdPlan_DefaultModel(t *testing.T) {
	t.Setenv("HARVEST_MODEL", "")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := &main.PlanCmd{
		Schema:     writeSchema(t, productSchemaJSON),
		URLs:       []string{"https://shop.example.com/widget"},
		CheapRate:  0.7,
		ContentLen: 8000,
	}

	err := cmd.Run(newDeps(nil, nil, stdout, stderr))
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), anthropic.DefaultModel)
}
