// Package schema describes the typed field definitions attached to every
// record kind and the nested data documents built from them.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType is the type tag of a Field.
type FieldType string

const (
	TypeText            FieldType = "text"
	TypeTextarea        FieldType = "textarea"
	TypeWysiwyg         FieldType = "wysiwyg"
	TypeRichText        FieldType = "richtext"
	TypeNumber          FieldType = "number"
	TypeSelect          FieldType = "select"
	TypeCheckbox        FieldType = "checkbox"
	TypeRadio           FieldType = "radio"
	TypeCheckboxMulti   FieldType = "checkbox_multi"
	TypeSection         FieldType = "section"
	TypePaymentSchedule FieldType = "payment_schedule"
	TypeOptionalExtras  FieldType = "optional_extras"
)

var knownTypes = map[FieldType]bool{
	TypeText: true, TypeTextarea: true, TypeWysiwyg: true, TypeRichText: true,
	TypeNumber: true, TypeSelect: true, TypeCheckbox: true, TypeRadio: true,
	TypeCheckboxMulti: true, TypeSection: true, TypePaymentSchedule: true,
	TypeOptionalExtras: true,
}

// IsRichText reports whether values of this type may carry markup.
func (t FieldType) IsRichText() bool {
	return t == TypeTextarea || t == TypeWysiwyg || t == TypeRichText
}

// IsMulti reports whether values of this type are lists of strings.
func (t FieldType) IsMulti() bool {
	return t == TypeCheckboxMulti
}

// Option is one static choice of a select, radio or checkbox_multi field.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Field is a single typed entry of a Definition.
type Field struct {
	Key              string    `yaml:"key" json:"key"`
	Type             FieldType `yaml:"type" json:"type"`
	Label            string    `yaml:"label,omitempty" json:"label,omitempty"`
	Description      string    `yaml:"description,omitempty" json:"description,omitempty"`
	Default          any       `yaml:"default,omitempty" json:"default,omitempty"`
	Options          []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	OptionsSource    string    `yaml:"options_source,omitempty" json:"options_source,omitempty"`
	Required         bool      `yaml:"required,omitempty" json:"required,omitempty"`
	EnableSnippets   bool      `yaml:"enable_snippets,omitempty" json:"enable_snippets,omitempty"`
	HiddenInPDF      bool      `yaml:"hidden_in_pdf,omitempty" json:"hidden_in_pdf,omitempty"`
	LabelHiddenInPDF bool      `yaml:"label_hidden_in_pdf,omitempty" json:"label_hidden_in_pdf,omitempty"`
}

// IsSectionMarker reports whether the field only opens a new section.
func (f Field) IsSectionMarker() bool {
	return f.Type == TypeSection
}

// Group is an ordered list of fields shown together in edit forms.
type Group struct {
	ID     string  `yaml:"id" json:"id"`
	Label  string  `yaml:"label" json:"label"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Definition is the static field configuration of one record kind.
type Definition struct {
	ID     string  `yaml:"id" json:"id"`
	Label  string  `yaml:"label,omitempty" json:"label,omitempty"`
	Groups []Group `yaml:"groups" json:"groups"`
}

// Fields returns every field of the definition in declaration order.
func (d *Definition) Fields() []Field {
	if d == nil {
		return nil
	}
	var out []Field
	for _, g := range d.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

// Field looks up a field by its dot-path key.
func (d *Definition) Field(key string) (Field, bool) {
	for _, f := range d.Fields() {
		if f.Key == key && !f.IsSectionMarker() {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that keys are unique and every type tag is known.
// Section markers carry no data and may omit a key.
func (d *Definition) Validate() error {
	if d == nil {
		return errors.New("schema: nil definition")
	}
	seen := make(map[string]bool)
	for gi, g := range d.Groups {
		for fi, f := range g.Fields {
			if !knownTypes[f.Type] {
				return fmt.Errorf("schema: %s: group %d field %d: unknown type %q", d.ID, gi, fi, f.Type)
			}
			if f.IsSectionMarker() {
				continue
			}
			if f.Key == "" {
				return fmt.Errorf("schema: %s: group %d field %d: missing key", d.ID, gi, fi)
			}
			if seen[f.Key] {
				return fmt.Errorf("schema: %s: duplicate key %q", d.ID, f.Key)
			}
			seen[f.Key] = true
		}
	}
	return nil
}

// Parse decodes a definition from JSON, falling back to YAML.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &def); err != nil {
			return nil, fmt.Errorf("schema: decode json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
