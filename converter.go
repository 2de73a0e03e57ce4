package harvest

// Converter converts HTML to Markdown.
// Markdown is a compact model input: it preserves structure while
// costing far fewer tokens than raw HTML.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from a Distiller).
	Convert(html string) (string, error)
}
