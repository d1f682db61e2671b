package pdfengine

import (
	"errors"
	"fmt"
)

// Sentinel errors for source documents that cannot be appended.
var (
	ErrSourceNotFound   = errors.New("pdfengine: source file not found")
	ErrSourceUnreadable = errors.New("pdfengine: source file unreadable")
	ErrUnsupportedType  = errors.New("pdfengine: unsupported source type")
)

// SourceError records which file an import failed on.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("pdfengine: %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func sourceError(path string, err error) *SourceError {
	return &SourceError{Path: path, Err: err}
}

// recovered converts a panic value raised by the importer into an error.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return fmt.Errorf("%w: %v", ErrSourceUnreadable, v)
}
