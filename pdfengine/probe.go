package pdfengine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	realgofpdi "github.com/phpdave11/gofpdi"
)

// PageSize is the media box of one source page in points.
type PageSize struct {
	Width  float64
	Height float64
}

// SourceKind classifies a file by how it is appended.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourcePDF
	SourceImage
)

// Classify returns the kind of source path names, judged by extension.
func Classify(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return SourcePDF
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return SourceImage
	}
	return SourceUnknown
}

// statSource reports ErrSourceNotFound for missing files and directories.
func statSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sourceError(path, ErrSourceNotFound)
		}
		return sourceError(path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
	}
	if info.IsDir() {
		return sourceError(path, ErrSourceNotFound)
	}
	return nil
}

// PageSizes opens the PDF at path and returns the media box of each page
// in page order. Files the importer cannot parse yield ErrSourceUnreadable.
func PageSizes(path string) (sizes []PageSize, err error) {
	if err := statSource(path); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			sizes = nil
			err = sourceError(path, recovered(r))
		}
	}()

	imp := realgofpdi.NewImporter()
	imp.SetSourceFile(path)
	boxes := imp.GetPageSizes()
	n := len(boxes)
	if n < 1 {
		return nil, sourceError(path, fmt.Errorf("%w: no pages", ErrSourceUnreadable))
	}

	sizes = make([]PageSize, 0, n)
	for i := 1; i <= n; i++ {
		size := PageSize{Width: a4WidthPt, Height: a4HeightPt}
		if box, ok := boxes[i]["/MediaBox"]; ok && box["w"] > 0 && box["h"] > 0 {
			size = PageSize{Width: box["w"], Height: box["h"]}
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	sizes, err := PageSizes(path)
	if err != nil {
		return 0, err
	}
	return len(sizes), nil
}
