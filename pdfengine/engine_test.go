package pdfengine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// createTestPDF creates an A4 PDF with numPages pages at filename.
func createTestPDF(t *testing.T, filename string, numPages int) {
	t.Helper()
	createSizedPDF(t, filename, a4WidthPt, a4HeightPt, numPages)
}

// createSizedPDF creates a PDF whose pages are w×h points.
func createSizedPDF(t *testing.T, filename string, w, h float64, numPages int) {
	t.Helper()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= numPages; i++ {
		pdf.AddPage()
		pdf.Text(20, 40, fmt.Sprintf("Source page %d", i))
	}
	if err := pdf.OutputFileAndClose(filename); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
}

func createTestPNG(t *testing.T, filename string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeOutput(t *testing.T, d *Document) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out.pdf")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Output(f); err != nil {
		f.Close()
		t.Fatalf("Output: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestImportAllPages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "portfolio.pdf")
	createTestPDF(t, src, 3)

	d := New()
	n, err := d.ImportAllPages(src)
	if err != nil {
		t.Fatalf("ImportAllPages: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d pages, want 3", n)
	}
	if got := d.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}

	count, err := PageCount(writeOutput(t, d))
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if count != 3 {
		t.Errorf("output has %d pages, want 3", count)
	}
}

func TestImportKeepsOrderAndPageSize(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.pdf")
	second := filepath.Join(dir, "second.pdf")
	createSizedPDF(t, first, 500, 700, 2)
	createSizedPDF(t, second, 300, 300, 1)

	d := New()
	d.AddPage()
	for _, src := range []string{first, second} {
		if _, err := d.ImportAllPages(src); err != nil {
			t.Fatalf("ImportAllPages(%s): %v", src, err)
		}
	}

	sizes, err := PageSizes(writeOutput(t, d))
	if err != nil {
		t.Fatalf("PageSizes: %v", err)
	}
	want := []PageSize{
		{a4WidthPt, a4HeightPt},
		{500, 700},
		{500, 700},
		{300, 300},
	}
	if len(sizes) != len(want) {
		t.Fatalf("got %d pages, want %d", len(sizes), len(want))
	}
	for i := range want {
		if math.Abs(sizes[i].Width-want[i].Width) > 0.5 || math.Abs(sizes[i].Height-want[i].Height) > 0.5 {
			t.Errorf("page %d size = %v, want %v", i+1, sizes[i], want[i])
		}
	}
}

func TestImportMissingFile(t *testing.T) {
	d := New()
	n, err := d.ImportAllPages(filepath.Join(t.TempDir(), "nope.pdf"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
	if n != 0 {
		t.Errorf("imported %d pages, want 0", n)
	}
	var serr *SourceError
	if !errors.As(err, &serr) || serr.Path == "" {
		t.Errorf("expected *SourceError with path, got %T", err)
	}
}

func TestImportDirectoryIsNotFound(t *testing.T) {
	d := New()
	if _, err := d.ImportAllPages(t.TempDir()); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestImportCorruptFileLeavesDocumentUsable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(bad, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "good.pdf")
	createTestPDF(t, good, 2)

	d := New()
	if _, err := d.ImportAllPages(bad); !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
	if n, err := d.ImportAllPages(good); err != nil || n != 2 {
		t.Fatalf("ImportAllPages(good) = %d, %v", n, err)
	}

	count, err := PageCount(writeOutput(t, d))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("output has %d pages, want 2", count)
	}
}

func TestImportUnsupportedType(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := New()
	if _, err := d.ImportAllPages(src); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestImportImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mockup.png")
	createTestPNG(t, src, 40, 20)

	d := New()
	n, err := d.ImportAllPages(src)
	if err != nil {
		t.Fatalf("ImportAllPages: %v", err)
	}
	if n != 1 || d.PageCount() != 1 {
		t.Errorf("got n=%d pages=%d, want 1 and 1", n, d.PageCount())
	}
}

func TestImportUndecodableImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(src, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := New()
	if _, err := d.ImportAllPages(src); !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
	if d.PageCount() != 0 {
		t.Errorf("PageCount() = %d, want 0", d.PageCount())
	}
}

func TestBandsSkipEarlierPages(t *testing.T) {
	cover := filepath.Join(t.TempDir(), "cover.pdf")
	createTestPDF(t, cover, 2)

	d := New()
	d.pdf.SetCompression(false)
	if _, err := d.ImportAllPages(cover); err != nil {
		t.Fatal(err)
	}
	d.SetBands(
		Band{Left: "Letterhead", Right: PageNumber},
		Band{Left: "Acme Studio", Right: "19-10-2026"},
	)
	d.AddPage()
	d.AddPage()

	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		t.Fatal(err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("(Letterhead)")); got != 2 {
		t.Errorf("header drawn %d times, want 2", got)
	}
	if got := bytes.Count(buf.Bytes(), []byte("(Acme Studio)")); got != 2 {
		t.Errorf("footer drawn %d times, want 2", got)
	}
	for _, page := range []string{"(3)", "(4)"} {
		if !bytes.Contains(buf.Bytes(), []byte(page)) {
			t.Errorf("missing page number %s", page)
		}
	}
}

func TestWriteMarkupStartsPage(t *testing.T) {
	d := New()
	if err := d.WriteMarkup("<h1>Quote</h1><p>Hello</p>"); err != nil {
		t.Fatalf("WriteMarkup: %v", err)
	}
	if d.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", d.PageCount())
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]SourceKind{
		"a.pdf":        SourcePDF,
		"b.PDF":        SourcePDF,
		"c.jpeg":       SourceImage,
		"d.webp":       SourceImage,
		"e.tiff":       SourceImage,
		"f.docx":       SourceUnknown,
		"no-extension": SourceUnknown,
	}
	for path, want := range tests {
		if got := Classify(path); got != want {
			t.Errorf("Classify(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFit(t *testing.T) {
	w, h := fit(400, 200, 100, 100)
	if w != 100 || h != 50 {
		t.Errorf("fit wide = %v×%v, want 100×50", w, h)
	}
	w, h = fit(100, 400, 200, 200)
	if w != 50 || h != 200 {
		t.Errorf("fit tall = %v×%v, want 50×200", w, h)
	}
}
