package section

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/proposalpdf/schema"
)

func def(fields ...schema.Field) *schema.Definition {
	return &schema.Definition{ID: "t", Groups: []schema.Group{{ID: "g", Fields: fields}}}
}

func labels(sections []Section) []string {
	var out []string
	for _, s := range sections {
		out = append(out, s.Label)
	}
	return out
}

func keys(s Section) []string {
	var out []string
	for _, e := range s.Entries {
		out = append(out, e.Key)
	}
	return out
}

func TestBuildWithoutMarkers(t *testing.T) {
	sections := Build(def(
		schema.Field{Key: "a", Type: schema.TypeText},
		schema.Field{Key: "b", Type: schema.TypeTextarea},
	))
	if len(sections) != 1 || sections[0].Label != DefaultLabel {
		t.Fatalf("sections = %v, want one default section", labels(sections))
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys(sections[0])); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !sections[0].HeadingHidden() {
		t.Error("default section heading must be hidden")
	}
}

func TestBuildMarkers(t *testing.T) {
	sections := Build(&schema.Definition{Groups: []schema.Group{
		{Fields: []schema.Field{
			{Key: "intro", Type: schema.TypeText},
			{Type: schema.TypeSection, Label: "Project"},
			{Key: "p1", Type: schema.TypeText},
			{Key: "secret", Type: schema.TypeText, HiddenInPDF: true},
		}},
		{Fields: []schema.Field{
			{Key: "p2", Type: schema.TypeText},
			{Type: schema.TypeSection},
			{Key: "u1", Type: schema.TypeText},
			{Type: schema.TypeSection, Label: "Legal", LabelHiddenInPDF: true},
			{Key: "l1", Type: schema.TypeTextarea},
		}},
	}})

	wantLabels := []string{DefaultLabel, "Project", UnnamedLabel, HiddenPrefix + "Legal"}
	if diff := cmp.Diff(wantLabels, labels(sections)); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p1", "p2"}, keys(sections[1])); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
	if !sections[3].HeadingHidden() || sections[3].Title() != "Legal" {
		t.Errorf("hidden section: hidden=%v title=%q", sections[3].HeadingHidden(), sections[3].Title())
	}
}

func TestBuildRepeatedMarkerAppends(t *testing.T) {
	sections := Build(def(
		schema.Field{Type: schema.TypeSection, Label: "A"},
		schema.Field{Key: "a1", Type: schema.TypeText},
		schema.Field{Type: schema.TypeSection, Label: "B"},
		schema.Field{Key: "b1", Type: schema.TypeText},
		schema.Field{Type: schema.TypeSection, Label: "A"},
		schema.Field{Key: "a2", Type: schema.TypeText},
	))
	if diff := cmp.Diff([]string{"A", "B"}, labels(sections)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a1", "a2"}, keys(sections[0])); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPartitionCompleteness(t *testing.T) {
	p, err := schema.NewProvider("")
	if err != nil {
		t.Fatal(err)
	}
	for _, kind := range p.Kinds() {
		d, _ := p.SchemaFor(kind)
		want := 0
		for _, f := range d.Fields() {
			if !f.IsSectionMarker() && !f.HiddenInPDF {
				want++
			}
		}
		if got := Count(Build(d)); got != want {
			t.Errorf("%s: %d entries, want %d", kind, got, want)
		}
	}
}

func TestBuildEmptyDefinition(t *testing.T) {
	if got := Build(&schema.Definition{}); len(got) != 0 {
		t.Errorf("got %d sections, want 0", len(got))
	}
}

func TestBuildUnnamedMarker(t *testing.T) {
	sections := Build(def(
		schema.Field{Key: "intro", Type: schema.TypeSection},
		schema.Field{Key: "a", Type: schema.TypeText},
	))
	if diff := cmp.Diff([]string{UnnamedLabel}, labels(sections)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !sections[0].HeadingHidden() {
		t.Error("unnamed section heading not hidden")
	}
}
