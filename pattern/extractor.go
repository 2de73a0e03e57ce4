// Package pattern provides a regex-based implementation of
// harvest.Extractor. It scans visible document text with type-keyed
// regular expressions, so it keeps working when HTML is too broken for
// structural extraction.
package pattern

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/harvest"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// DefaultConfidence is assigned to pattern hits unless overridden.
const DefaultConfidence = 0.8

// typePatterns maps field types to regular expressions. Across patterns
// for one field, the match appearing earliest in the document wins.
var typePatterns = map[harvest.FieldType][]*regexp.Regexp{
	harvest.TypeCurrency: {
		regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d{1,2})?`),
		regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP)`),
	},
	harvest.TypeNumber: {
		regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`),
	},
	harvest.TypeDate: {
		// ISO-8601 only: other formats stay unresolved so escalation can
		// return a normalized date instead of validation rejecting the hit.
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:T\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{2}:\d{2})?)?`),
	},
	harvest.TypeURL: {
		regexp.MustCompile(`https?://[^\s"'<>]+`),
	},
}

// namePatterns catch fields whose semantics are visible in the name.
var namePatterns = map[string][]*regexp.Regexp{
	"email":      {regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)},
	"percentage": {regexp.MustCompile(`\d+(?:\.\d+)?%`)},
	"discount":   {regexp.MustCompile(`\d+(?:\.\d+)?%`)},
}

var (
	blockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<style[^>]*>.*?</style>|<noscript[^>]*>.*?</noscript>|<!--.*?-->`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	wsRe    = regexp.MustCompile(`\s+`)
)

// Extractor resolves schema fields with regular expressions over the
// document's visible text.
type Extractor struct {
	confidence float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConfidence overrides the confidence assigned to pattern hits.
func WithConfidence(c float64) Option {
	return func(e *Extractor) {
		e.confidence = c
	}
}

// New creates a pattern extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{confidence: DefaultConfidence}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Source identifies candidates produced by this extractor.
func (e *Extractor) Source() harvest.Source {
	return harvest.SourcePattern
}

// Extract returns candidate values for schema fields found in the
// document text. It never fails: fields without a match simply yield
// no candidate.
func (e *Extractor) Extract(doc *harvest.Document, schema *harvest.Schema) ([]harvest.ExtractedField, error) {
	text := visibleText(doc.HTML)
	if text == "" {
		return nil, nil
	}

	var fields []harvest.ExtractedField
	for _, f := range schema.Fields {
		patterns, err := patternsFor(f)
		if err != nil {
			return nil, err
		}
		if len(patterns) == 0 {
			continue
		}

		var value any
		if f.Type == harvest.TypeList {
			// Lists only make sense with explicit schema patterns.
			if len(f.Patterns) > 0 {
				value = allMatches(text, patterns)
			}
		} else {
			value = earliestMatch(text, patterns)
		}
		if value == nil {
			continue
		}

		fields = append(fields, harvest.ExtractedField{
			Name:       f.Name,
			Value:      value,
			Source:     harvest.SourcePattern,
			Confidence: e.confidence,
		})
	}
	return fields, nil
}

// patternsFor resolves the pattern list for a field: schema overrides win
// outright; otherwise name-keyed patterns run alongside type patterns.
func patternsFor(f harvest.Field) ([]*regexp.Regexp, error) {
	if len(f.Patterns) > 0 {
		compiled := make([]*regexp.Regexp, 0, len(f.Patterns))
		for _, p := range f.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, harvest.Errorf(harvest.EINVALID, "field %q pattern does not compile: %v", f.Name, err)
			}
			compiled = append(compiled, re)
		}
		return compiled, nil
	}
	var patterns []*regexp.Regexp
	patterns = append(patterns, namePatterns[strings.ToLower(f.Name)]...)
	patterns = append(patterns, typePatterns[f.Type]...)
	return patterns, nil
}

// earliestMatch returns the match closest to the start of the text
// across all patterns, or nil.
func earliestMatch(text string, patterns []*regexp.Regexp) any {
	best := -1
	var value string
	for _, re := range patterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			value = text[loc[0]:loc[1]]
		}
	}
	if best == -1 {
		return nil
	}
	return strings.TrimSpace(value)
}

// allMatches returns every match of every pattern, deduplicated, in
// document order.
func allMatches(text string, patterns []*regexp.Regexp) any {
	type hit struct {
		pos   int
		value string
	}
	var hits []hit
	seen := make(map[string]bool)
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			v := strings.TrimSpace(text[loc[0]:loc[1]])
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			hits = append(hits, hit{pos: loc[0], value: v})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

// visibleText strips markup from HTML, leaving space-normalized text.
func visibleText(s string) string {
	s = blockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
