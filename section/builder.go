// Package section groups the fields of a schema definition into the ordered
// sections printed in a document body.
package section

import (
	"strings"

	"github.com/lvillar/proposalpdf/schema"
)

const (
	// DefaultLabel names the implicit section holding fields that precede
	// any section marker. Its heading is never printed.
	DefaultLabel = "__default__"
	// UnnamedLabel replaces the label of a marker that has none.
	UnnamedLabel = "__unnamed_section__"
	// HiddenPrefix marks a section whose heading must not be printed.
	HiddenPrefix = "__hidden_"
)

// Entry is one field placed in a section.
type Entry struct {
	Key   string
	Field schema.Field
}

// Section is a labelled, ordered run of fields.
type Section struct {
	Label   string
	Entries []Entry
}

// HeadingHidden reports whether the label is a builder-internal marker.
func (s Section) HeadingHidden() bool {
	return s.Label == DefaultLabel || s.Label == UnnamedLabel || strings.HasPrefix(s.Label, HiddenPrefix)
}

// Title returns the printable label.
func (s Section) Title() string {
	return strings.TrimPrefix(s.Label, HiddenPrefix)
}

// Build partitions the definition's fields into sections in declaration
// order. Fields flagged hidden_in_pdf are dropped. A marker whose label was
// already used appends to the existing section rather than opening a second
// one.
func Build(def *schema.Definition) []Section {
	var (
		sections []Section
		index    = make(map[string]int)
		current  = DefaultLabel
	)
	open := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		sections = append(sections, Section{Label: label})
		index[label] = len(sections) - 1
		return index[label]
	}

	for _, f := range def.Fields() {
		if f.IsSectionMarker() {
			current = f.Label
			if current == "" {
				current = UnnamedLabel
			}
			if f.LabelHiddenInPDF {
				current = HiddenPrefix + current
			}
			open(current)
			continue
		}
		if f.HiddenInPDF {
			continue
		}
		i := open(current)
		sections[i].Entries = append(sections[i].Entries, Entry{Key: f.Key, Field: f})
	}
	return sections
}

// Count returns the number of entries across all sections.
func Count(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Entries)
	}
	return n
}
