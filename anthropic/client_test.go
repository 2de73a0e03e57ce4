package anthropic_test

import (
	"context"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Extract_ReturnsErrorWhenSchemaEmpty(t *testing.T) {
	t.Parallel()

	client := anthropic.NewClient("test-key")

	_, err := client.Extract(context.Background(), &harvest.ModelRequest{
		Content: "<p>some content</p>",
		Schema:  &harvest.Schema{},
	})

	require.Error(t, err)
	assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	assert.Contains(t, harvest.ErrorMessage(err), "at least one field")
}

func TestClient_Extract_ReturnsErrorWhenContentEmpty(t *testing.T) {
	t.Parallel()

	client := anthropic.NewClient("test-key")

	_, err := client.Extract(context.Background(), &harvest.ModelRequest{
		URL: "https://example.com/p/1",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
		}},
	})

	require.Error(t, err)
	assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	assert.Contains(t, harvest.ErrorMessage(err), "content")
}

func TestBuildUserPrompt_ContainsDocument(t *testing.T) {
	t.Parallel()

	prompt := anthropic.BuildUserPrompt(&harvest.ModelRequest{
		URL:     "https://example.com/products/42",
		Content: "# Widget Pro\n\nPrice: $19.99",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
		}},
	})

	assert.Contains(t, prompt, "<document>")
	assert.Contains(t, prompt, "<source>https://example.com/products/42</source>")
	assert.Contains(t, prompt, "Price: $19.99")
	assert.Contains(t, prompt, "</document>")
}

func TestBuildUserPrompt_ListsFieldSpecs(t *testing.T) {
	t.Parallel()

	prompt := anthropic.BuildUserPrompt(&harvest.ModelRequest{
		Content: "content",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString, Required: true, Hint: "The product name"},
			{Name: "sku", Type: harvest.TypeString, Format: `^[A-Z]{3}-\d+$`},
		}},
	})

	assert.Contains(t, prompt, "- title (string, required): The product name")
	assert.Contains(t, prompt, "- sku (string)")
	assert.Contains(t, prompt, `[format: ^[A-Z]{3}-\d+$]`)
}

func TestBuildUserPrompt_RequestsJSONFormat(t *testing.T) {
	t.Parallel()

	prompt := anthropic.BuildUserPrompt(&harvest.ModelRequest{
		Content: "content",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
			{Name: "price", Type: harvest.TypeCurrency},
		}},
	})

	assert.Contains(t, prompt, "Respond with ONLY valid JSON")
	assert.Contains(t, prompt, `"title": <value or null>`)
	assert.Contains(t, prompt, `"price": <value or null>`)
	assert.Contains(t, prompt, `"confidence": <0.0 to 1.0>`)
}

func TestBuildUserPrompt_DoesNotContainSystemInstruction(t *testing.T) {
	t.Parallel()

	prompt := anthropic.BuildUserPrompt(&harvest.ModelRequest{
		Content: "content",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
		}},
	})

	assert.NotContains(t, prompt, "You are a data extraction assistant")
}

func TestBuildUserPrompt_OmitsSourceWhenURLEmpty(t *testing.T) {
	t.Parallel()

	prompt := anthropic.BuildUserPrompt(&harvest.ModelRequest{
		Content: "content",
		Schema: &harvest.Schema{Fields: []harvest.Field{
			{Name: "title", Type: harvest.TypeString},
		}},
	})

	assert.NotContains(t, prompt, "<source>")
}
