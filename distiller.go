package harvest

// Distillation holds the readable core of an HTML page.
type Distillation struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Distiller reduces HTML pages to their main content ahead of model
// escalation, cutting the tokens a model call has to pay for.
type Distiller interface {
	// Distill processes raw HTML and returns the main content.
	// The title comes from page metadata (meta tags, JSON+LD, etc.).
	Distill(html string) (*Distillation, error)
}
