//go:build integration

package anthropic_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Integration_ExtractsFields(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := anthropic.NewClient(apiKey)

	resp, err := client.Extract(ctx, &harvest.ModelRequest{
		URL: "https://example.com/products/widget-pro",
		Content: `# Widget Pro 3000

The Widget Pro 3000 is our flagship widget. Price: $249.99.
Released on 2024-03-15.`,
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString, Required: true, Hint: "The product name"},
			{Name: "price", Type: harvest.TypeCurrency, Required: true},
			{Name: "release_date", Type: harvest.TypeDate},
		}},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "price")
	assert.NotEmpty(t, resp.Model)
	assert.Positive(t, resp.Usage.InputTokens)
	assert.Positive(t, resp.Usage.OutputTokens)
}
