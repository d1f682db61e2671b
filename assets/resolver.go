package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when an identifier does not resolve to a file.
var ErrNotFound = errors.New("assets: file not found")

// Record is the file information stored for one asset.
type Record struct {
	ID int64
	// AttachmentPath is the path of the attached media file, absolute or
	// relative to the uploads root. Empty when the asset has no attachment.
	AttachmentPath string
	// MetadataPath is the relative path declared in the asset metadata.
	MetadataPath string
}

// Lookup loads asset records by identifier.
type Lookup interface {
	LookupAsset(ctx context.Context, id int64) (Record, error)
}

// Resolver maps asset identifiers to files that exist on disk.
type Resolver struct {
	lookup     Lookup
	appRoot    string
	uploadsDir string
}

// NewResolver returns a resolver reading records from lookup. Relative
// metadata paths are tried against appRoot, then uploadsDir.
func NewResolver(lookup Lookup, appRoot, uploadsDir string) *Resolver {
	return &Resolver{lookup: lookup, appRoot: appRoot, uploadsDir: uploadsDir}
}

// ResolveFilePath returns the absolute path of the asset's file. Candidates
// are tried in order: attached media, metadata path under the application
// root, metadata path under the uploads root.
func (r *Resolver) ResolveFilePath(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: invalid id %d", ErrNotFound, id)
	}
	rec, err := r.lookup.LookupAsset(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: asset %d: %v", ErrNotFound, id, err)
	}
	for _, candidate := range r.candidates(rec) {
		if fileExists(candidate) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: asset %d", ErrNotFound, id)
}

func (r *Resolver) candidates(rec Record) []string {
	var out []string
	if rec.AttachmentPath != "" {
		if filepath.IsAbs(rec.AttachmentPath) {
			out = append(out, rec.AttachmentPath)
		} else {
			out = append(out, filepath.Join(r.uploadsDir, rec.AttachmentPath))
		}
	}
	if rec.MetadataPath != "" {
		rel := filepath.Clean(rec.MetadataPath)
		out = append(out, filepath.Join(r.appRoot, rel), filepath.Join(r.uploadsDir, rel))
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
