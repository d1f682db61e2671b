package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinDefinitions(t *testing.T) {
	p, err := NewProvider("")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	for _, kind := range []Kind{
		KindProposal, KindBrochure, KindExtra, KindSnippet,
		KindWebsitePackage, KindHostingPackage, KindMaintenancePackage,
	} {
		def, err := p.SchemaFor(kind)
		if err != nil {
			t.Errorf("SchemaFor(%s): %v", kind, err)
			continue
		}
		if len(def.Fields()) == 0 {
			t.Errorf("%s: no fields", kind)
		}
	}

	brochure, _ := p.SchemaFor(KindBrochure)
	if f, ok := brochure.Field("content.heading"); !ok || f.Type != TypeTextarea {
		t.Errorf("content.heading = %+v, %v", f, ok)
	}
}

func TestProviderOverride(t *testing.T) {
	dir := t.TempDir()
	custom := `{"id":"brochure","groups":[{"id":"g","fields":[{"key":"only.one","type":"text","label":"Only"}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "brochure.json"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewProvider(dir)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	def, _ := p.SchemaFor(KindBrochure)
	if _, ok := def.Field("only.one"); !ok {
		t.Error("override not applied")
	}
	if _, ok := def.Field("content.heading"); ok {
		t.Error("override must replace, not merge")
	}
}

func TestSchemaForUnknown(t *testing.T) {
	p, err := NewProvider("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.SchemaFor("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	src := []byte(`
id: dup
groups:
  - id: g
    fields:
      - {key: a, type: text}
      - {key: a, type: textarea}
`)
	if _, err := Parse(src); err == nil {
		t.Error("expected duplicate key error")
	}
}

func TestPackageKind(t *testing.T) {
	if PackageKind("hosting") != KindHostingPackage || PackageKind("maintenance") != KindMaintenancePackage || PackageKind("website") != KindWebsitePackage {
		t.Error("unexpected package kind mapping")
	}
}
