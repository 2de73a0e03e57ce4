// Package validate checks merged extraction output against the schema
// and coerces raw values to their declared types. Validation is
// idempotent: cleaned output passes unchanged through a second pass.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// DefaultMaxStringLen caps string values; longer values are truncated
// with a warning.
const DefaultMaxStringLen = 10000

// currencySymbols maps currency symbols to ISO codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// currencyCodeRe matches a trailing or leading ISO currency code.
var currencyCodeRe = regexp.MustCompile(`\b(USD|EUR|GBP)\b`)

// dateLayouts are the accepted ISO-8601 forms, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Rule coerces and checks a single value. It returns the cleaned value
// and any warnings; a non-nil error excludes the field from cleaned data.
type Rule func(f harvest.Field, value any) (any, []string, error)

// Validator applies type rules to merged extractions.
type Validator struct {
	rules        map[harvest.FieldType]Rule
	maxStringLen int
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxStringLen overrides the string truncation threshold.
func WithMaxStringLen(n int) Option {
	return func(v *Validator) {
		v.maxStringLen = n
	}
}

// WithRule registers a custom rule for a field type, replacing the
// built-in one.
func WithRule(t harvest.FieldType, r Rule) Option {
	return func(v *Validator) {
		v.rules[t] = r
	}
}

// New creates a Validator with the built-in rule table.
func New(opts ...Option) *Validator {
	v := &Validator{maxStringLen: DefaultMaxStringLen}
	v.rules = map[harvest.FieldType]Rule{
		harvest.TypeString:   v.validateString,
		harvest.TypeNumber:   v.validateNumber,
		harvest.TypeCurrency: v.validateCurrency,
		harvest.TypeDate:     v.validateDate,
		harvest.TypeURL:      v.validateURL,
		harvest.TypeList:     v.validateList,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every schema field against the extraction. Missing
// required fields are errors; missing optional fields are warnings.
// Cleaned data contains exactly the fields that passed.
func (v *Validator) Validate(e *harvest.Extraction, schema *harvest.Schema) *harvest.Validation {
	out := &harvest.Validation{Data: make(map[string]any)}

	for _, f := range schema.Fields {
		candidate, ok := e.Fields[f.Name]
		if !ok {
			if f.Required {
				out.Errors = append(out.Errors, fmt.Sprintf("required field %q missing", f.Name))
			} else {
				out.Warnings = append(out.Warnings, fmt.Sprintf("optional field %q missing", f.Name))
			}
			continue
		}

		rule, ok := v.rules[f.Type]
		if !ok {
			out.Errors = append(out.Errors, fmt.Sprintf("field %q: no rule for type %q", f.Name, f.Type))
			continue
		}

		cleaned, warnings, err := rule(f, candidate.Value)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("field %q: %s", f.Name, harvest.ErrorMessage(err)))
			continue
		}
		out.Warnings = append(out.Warnings, warnings...)

		if f.Format != "" {
			if err := checkFormat(f, cleaned); err != nil {
				out.Errors = append(out.Errors, fmt.Sprintf("field %q: %s", f.Name, harvest.ErrorMessage(err)))
				continue
			}
		}

		out.Data[f.Name] = cleaned
	}

	out.Confidence = confidence(len(out.Data), len(schema.Fields), len(out.Errors), len(out.Warnings))
	return out
}

// confidence scores data quality: the valid fraction, discounted per
// error and warning, clamped to [0, 1].
func confidence(valid, total, errors, warnings int) float64 {
	if total == 0 {
		return 0
	}
	c := float64(valid)/float64(total) - 0.10*float64(errors) - 0.05*float64(warnings)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// checkFormat matches the cleaned value's string form against the
// field's format expression, anchored at both ends.
func checkFormat(f harvest.Field, cleaned any) error {
	s, ok := cleaned.(string)
	if !ok {
		return nil
	}
	re, err := regexp.Compile("^(?:" + f.Format + ")$")
	if err != nil {
		return harvest.Errorf(harvest.EINVALID, "format does not compile: %v", err)
	}
	if !re.MatchString(s) {
		return harvest.Errorf(harvest.EINVALID, "value %q does not match format %q", s, f.Format)
	}
	return nil
}

func (v *Validator) validateString(f harvest.Field, value any) (any, []string, error) {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	s = strings.TrimSpace(s)

	var warnings []string
	if s == "" {
		warnings = append(warnings, fmt.Sprintf("field %q is empty", f.Name))
	}
	if len(s) > v.maxStringLen {
		s = s[:v.maxStringLen]
		warnings = append(warnings, fmt.Sprintf("field %q truncated to %d characters", f.Name, v.maxStringLen))
	}
	return s, warnings, nil
}

func (v *Validator) validateNumber(f harvest.Field, value any) (any, []string, error) {
	switch n := value.(type) {
	case float64:
		return n, nil, nil
	case int:
		return float64(n), nil, nil
	case int64:
		return float64(n), nil, nil
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSuffix(s, "%")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, nil, harvest.Errorf(harvest.EINVALID, "%q is not a number", n)
		}
		return parsed, nil, nil
	}
	return nil, nil, harvest.Errorf(harvest.EINVALID, "unsupported number value %T", value)
}

func (v *Validator) validateCurrency(f harvest.Field, value any) (any, []string, error) {
	switch m := value.(type) {
	case harvest.Money:
		if m.Amount < 0 {
			return nil, nil, harvest.Errorf(harvest.EINVALID, "negative amount %.2f", m.Amount)
		}
		if m.Currency == "" {
			m.Currency = "USD"
		}
		return m, nil, nil
	case map[string]any:
		// A Money value that round-tripped through JSON.
		amount, ok := m["amount"].(float64)
		if !ok {
			return nil, nil, harvest.Errorf(harvest.EINVALID, "currency object has no amount")
		}
		currency, _ := m["currency"].(string)
		return v.validateCurrency(f, harvest.Money{Amount: amount, Currency: currency})
	case float64:
		return v.validateCurrency(f, harvest.Money{Amount: m})
	case int:
		return v.validateCurrency(f, harvest.Money{Amount: float64(m)})
	case string:
		return parseMoney(m)
	}
	return nil, nil, harvest.Errorf(harvest.EINVALID, "unsupported currency value %T", value)
}

// parseMoney extracts an amount and an ISO currency code from a price
// string. The code is inferred from the symbol when absent; USD is the
// default.
func parseMoney(s string) (any, []string, error) {
	currency := ""
	cleaned := strings.TrimSpace(s)

	if code := currencyCodeRe.FindString(cleaned); code != "" {
		currency = code
		cleaned = strings.Replace(cleaned, code, "", 1)
	}
	for symbol, code := range currencySymbols {
		if strings.Contains(cleaned, symbol) {
			if currency == "" {
				currency = code
			}
			cleaned = strings.Replace(cleaned, symbol, "", 1)
			break
		}
	}
	if currency == "" {
		currency = "USD"
	}

	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "%q is not a money amount", s)
	}
	if amount < 0 {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "negative amount %.2f", amount)
	}
	return harvest.Money{Amount: amount, Currency: currency}, nil, nil
}

func (v *Validator) validateDate(f harvest.Field, value any) (any, []string, error) {
	switch d := value.(type) {
	case time.Time:
		return d.Format("2006-01-02"), nil, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), nil, nil
			}
		}
		return nil, nil, harvest.Errorf(harvest.EINVALID, "%q is not an ISO-8601 date", d)
	}
	return nil, nil, harvest.Errorf(harvest.EINVALID, "unsupported date value %T", value)
}

func (v *Validator) validateURL(f harvest.Field, value any) (any, []string, error) {
	s, ok := value.(string)
	if !ok {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "unsupported URL value %T", value)
	}
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, nil, harvest.Errorf(harvest.EINVALID, "%q is not an absolute http(s) URL", s)
	}
	return s, nil, nil
}

func (v *Validator) validateList(f harvest.Field, value any) (any, []string, error) {
	var raw []string
	switch l := value.(type) {
	case []string:
		raw = l
	case []any:
		for _, item := range l {
			raw = append(raw, fmt.Sprintf("%v", item))
		}
	case string:
		raw = strings.Split(l, ",")
	default:
		return nil, nil, harvest.Errorf(harvest.EINVALID, "unsupported list value %T", value)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	var warnings []string
	if len(items) == 0 {
		warnings = append(warnings, fmt.Sprintf("field %q is an empty list", f.Name))
	}
	return items, warnings, nil
}
