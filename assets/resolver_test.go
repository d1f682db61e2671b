package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type mapLookup map[int64]Record

func (m mapLookup) LookupAsset(_ context.Context, id int64) (Record, error) {
	rec, ok := m[id]
	if !ok {
		return Record{}, errors.New("no such asset")
	}
	return rec, nil
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveFilePath(t *testing.T) {
	root := t.TempDir()
	uploads := t.TempDir()

	attached := touch(t, filepath.Join(uploads, "2026/01/cover.pdf"))
	inRoot := touch(t, filepath.Join(root, "assets/pdf/terms.pdf"))
	inUploads := touch(t, filepath.Join(uploads, "brochures/ending.pdf"))
	touch(t, filepath.Join(uploads, "assets/pdf/terms.pdf"))

	r := NewResolver(mapLookup{
		1: {ID: 1, AttachmentPath: "2026/01/cover.pdf", MetadataPath: "assets/pdf/terms.pdf"},
		2: {ID: 2, MetadataPath: "assets/pdf/terms.pdf"},
		3: {ID: 3, MetadataPath: "brochures/ending.pdf"},
		4: {ID: 4, AttachmentPath: "missing.pdf", MetadataPath: "brochures/ending.pdf"},
		5: {ID: 5, AttachmentPath: "missing.pdf"},
		6: {ID: 6, AttachmentPath: attached},
	}, root, uploads)

	tests := []struct {
		id   int64
		want string
	}{
		{1, attached},
		{2, inRoot},
		{3, inUploads},
		{4, inUploads},
		{6, attached},
	}
	for _, tt := range tests {
		got, err := r.ResolveFilePath(context.Background(), tt.id)
		if err != nil {
			t.Errorf("ResolveFilePath(%d): %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveFilePath(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}

	for _, id := range []int64{0, 5, 99} {
		if _, err := r.ResolveFilePath(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("ResolveFilePath(%d) err = %v, want ErrNotFound", id, err)
		}
	}
}
