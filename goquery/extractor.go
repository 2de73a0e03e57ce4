package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// structuralConfidence is the fixed confidence of selector hits: an element
// that matches a semantic selector is taken at face value.
const structuralConfidence = 1.0

// nameSelectors maps well-known field names to CSS selectors tried in
// order. The first selector yielding a non-empty value wins.
var nameSelectors = map[string][]string{
	"title":       {"h1", "h2.title", `[class*="title"]`, `meta[property="og:title"]`, "title"},
	"name":        {"h1", `[class*="name"]`, `[itemprop="name"]`},
	"price":       {`[class*="price"]`, `[data-price]`, ".cost", "span.amount", `[itemprop="price"]`},
	"description": {`meta[name="description"]`, `meta[property="og:description"]`, `[class*="description"]`, "p.summary", `[itemprop="description"]`},
	"features":    {`[class*="feature"] li`, ".specs li", "ul.benefits li"},
	"author":      {`meta[name="author"]`, `[rel="author"]`, `[class*="author"]`, `[itemprop="author"]`},
	"image":       {`meta[property="og:image"]`, `[itemprop="image"]`},
}

// typeSelectors are fallbacks for fields whose names are not in the table.
var typeSelectors = map[harvest.FieldType][]string{
	harvest.TypeCurrency: {`[class*="price"]`, `[data-price]`, `[itemprop="price"]`},
	harvest.TypeDate:     {"time[datetime]", `meta[property="article:published_time"]`, `[class*="date"]`},
	harvest.TypeURL:      {`link[rel="canonical"]`, `meta[property="og:url"]`},
}

// Extractor resolves schema fields against the document DOM.
// Fields with no matching element yield no candidate; the only error is
// EPARSE when the document cannot be parsed at all.
type Extractor struct{}

// New creates a structural extractor.
func New() *Extractor {
	return &Extractor{}
}

// Source identifies candidates produced by this extractor.
func (e *Extractor) Source() harvest.Source {
	return harvest.SourceStructural
}

// Extract returns candidate values for schema fields found in the document.
func (e *Extractor) Extract(doc *harvest.Document, schema *harvest.Schema) ([]harvest.ExtractedField, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil, harvest.Errorf(harvest.EPARSE, "failed to parse HTML: %v", err)
	}

	var fields []harvest.ExtractedField
	for _, f := range schema.Fields {
		selectors := selectorsFor(f)
		if len(selectors) == 0 {
			continue
		}

		var value any
		if f.Type == harvest.TypeList {
			value = firstList(root, selectors)
		} else {
			value = firstValue(root, selectors)
		}
		if value == nil {
			continue
		}

		fields = append(fields, harvest.ExtractedField{
			Name:       f.Name,
			Value:      value,
			Source:     harvest.SourceStructural,
			Confidence: structuralConfidence,
		})
	}
	return fields, nil
}

// selectorsFor resolves the selector list for a field: schema overrides
// win outright; otherwise name-keyed selectors run first with type
// fallbacks appended.
func selectorsFor(f harvest.Field) []string {
	if len(f.Selectors) > 0 {
		return f.Selectors
	}
	var selectors []string
	selectors = append(selectors, nameSelectors[strings.ToLower(f.Name)]...)
	selectors = append(selectors, typeSelectors[f.Type]...)
	return selectors
}

// firstValue returns the first non-empty value produced by the selectors,
// in document order within each selector.
func firstValue(root *goquery.Document, selectors []string) any {
	for _, selector := range selectors {
		var value string
		root.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			value = nodeValue(sel)
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return nil
}

// firstList gathers every value matched by the first productive selector.
func firstList(root *goquery.Document, selectors []string) any {
	for _, selector := range selectors {
		var items []string
		root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if v := nodeValue(sel); v != "" {
				items = append(items, v)
			}
		})
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// nodeValue reads the natural value of an element: the content attribute
// for meta tags, href for link tags, datetime for time elements, the
// data-price attribute when present, and trimmed text otherwise.
func nodeValue(sel *goquery.Selection) string {
	if sel.Is("meta") {
		v, _ := sel.Attr("content")
		return strings.TrimSpace(v)
	}
	if sel.Is("link") {
		v, _ := sel.Attr("href")
		return strings.TrimSpace(v)
	}
	if v, ok := sel.Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := sel.Attr("data-price"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}
