package harvest

import (
	"encoding/json"
	"regexp"
)

// FieldType identifies the value domain of a schema field.
type FieldType string

// Supported field types.
const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeCurrency FieldType = "currency"
	TypeDate     FieldType = "date"
	TypeURL      FieldType = "url"
	TypeList     FieldType = "list"
)

// fieldTypes enumerates valid types for schema validation.
var fieldTypes = map[FieldType]bool{
	TypeString:   true,
	TypeNumber:   true,
	TypeCurrency: true,
	TypeDate:     true,
	TypeURL:      true,
	TypeList:     true,
}

// Field describes a single value to extract from each document.
type Field struct {
	// Name is the output key. Unique within a schema.
	Name string `json:"name"`

	// Type determines which extraction patterns and validation rules apply.
	Type FieldType `json:"type"`

	// Required fields contribute to document confidence and produce
	// validation errors when missing. Optional fields produce warnings.
	Required bool `json:"required,omitempty"`

	// Format is an optional regular expression a validated string value
	// must match in full.
	Format string `json:"format,omitempty"`

	// Hint is a human description of the field, forwarded to the model
	// during escalation.
	Hint string `json:"hint,omitempty"`

	// Selectors optionally override the built-in CSS selector table
	// for this field.
	Selectors []string `json:"selectors,omitempty"`

	// Patterns optionally override the built-in regular expression table
	// for this field.
	Patterns []string `json:"patterns,omitempty"`
}

// Schema is an ordered list of field descriptors. Field order is preserved
// through extraction and output. A schema is read-only once a run starts.
type Schema struct {
	Fields []Field `json:"fields"`
}

// ParseSchema decodes and validates a JSON schema definition.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, Errorf(EINVALID, "schema is not valid JSON: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate returns an error if the schema contains invalid fields.
// A schema error is the only fatal condition in a run.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return Errorf(EINVALID, "schema requires at least one field")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return Errorf(EINVALID, "schema field name required")
		}
		if seen[f.Name] {
			return Errorf(EINVALID, "duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true
		if !fieldTypes[f.Type] {
			return Errorf(EINVALID, "field %q has unknown type %q", f.Name, f.Type)
		}
		if f.Format != "" {
			if _, err := regexp.Compile(f.Format); err != nil {
				return Errorf(EINVALID, "field %q format does not compile: %v", f.Name, err)
			}
		}
		for _, p := range f.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				return Errorf(EINVALID, "field %q pattern does not compile: %v", f.Name, err)
			}
		}
	}
	return nil
}

// Field returns the descriptor for name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the required fields in schema order.
func (s *Schema) Required() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Subset returns a reduced schema containing only the named fields,
// preserving schema order. Unknown names are ignored.
func (s *Schema) Subset(names []string) *Schema {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	sub := &Schema{}
	for _, f := range s.Fields {
		if want[f.Name] {
			sub.Fields = append(sub.Fields, f)
		}
	}
	return sub
}

// Names returns all field names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}
