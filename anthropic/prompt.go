package anthropic

import (
	"fmt"
	"strings"

	"github.com/fwojciec/harvest"
)

// systemPrompt is the shared system instruction for extraction calls.
const systemPrompt = `You are a data extraction assistant. You extract structured fields from web page content.

Rules:
- Extract ONLY from the provided document; never invent values
- Return valid JSON for every response
- Use null for a field when the document does not contain it
- Confidence is 0.0-1.0 based on how directly the document states the values
- For numbers and currency amounts, use raw numbers without formatting (e.g., 1299.99 not "$1,299.99")
- For dates, use ISO format (YYYY-MM-DD)
- For list fields, return JSON arrays of strings`

// BuildUserPrompt builds the user message for one extraction call: the
// prepared document, the field specifications, and the response format.
func BuildUserPrompt(req *harvest.ModelRequest) string {
	var sb strings.Builder
	sb.WriteString("<document>\n")
	if req.URL != "" {
		fmt.Fprintf(&sb, "<source>%s</source>\n", req.URL)
	}
	fmt.Fprintf(&sb, "<content>%s</content>\n", req.Content)
	sb.WriteString("</document>\n\n")

	sb.WriteString("Extract the following fields from the document:\n")
	for _, f := range req.Schema.Fields {
		sb.WriteString(fieldSpec(f))
	}

	sb.WriteString(`
Respond with ONLY valid JSON in this format:
{
  "fields": {`)
	for i, f := range req.Schema.Fields {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"%s": <value or null>`, f.Name)
	}
	sb.WriteString(`},
  "confidence": <0.0 to 1.0>
}`)
	return sb.String()
}

func fieldSpec(f harvest.Field) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s (%s", f.Name, f.Type)
	if f.Required {
		sb.WriteString(", required")
	}
	sb.WriteString(")")
	if f.Hint != "" {
		fmt.Fprintf(&sb, ": %s", f.Hint)
	}
	if f.Format != "" {
		fmt.Fprintf(&sb, " [format: %s]", f.Format)
	}
	sb.WriteString("\n")
	return sb.String()
}
