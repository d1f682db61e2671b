// Package pdfengine adapts gofpdf and gofpdi to the few primitives document
// assembly needs: import every page of a file, start a page, write a
// block of markup and draw running header/footer bands.
//
// Each import is isolated. A missing or corrupt source returns an error
// wrapping ErrSourceNotFound or ErrSourceUnreadable and leaves the
// document usable for the next call.
package pdfengine

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/lvillar/proposalpdf/markup"
)

const (
	a4WidthPt  = 595.28
	a4HeightPt = 841.89
	ptToMM     = 25.4 / 72
)

// Placeholders expanded when a band is drawn.
const (
	PageNumber = "{PAGENO}"
	PageTotal  = "{nb}"
)

// Band is one running header or footer line. Each slot may contain
// PageNumber or PageTotal.
type Band struct {
	Left   string
	Center string
	Right  string
}

// IsZero reports whether the band draws nothing.
func (b Band) IsZero() bool {
	return b.Left == "" && b.Center == "" && b.Right == ""
}

// Document is a PDF under construction.
type Document struct {
	pdf    *gofpdf.Fpdf
	cfg    *config
	imp    *gofpdi.Importer
	styles *markup.Stylesheet
	tr     func(string) string

	header    Band
	footer    Band
	bandsFrom int
	images    int
}

// New creates an empty document. With no options it is portrait A4 in
// millimetres with 30mm top and bottom and 18mm side margins.
func New(opts ...Option) *Document {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	pdf := gofpdf.New(cfg.orientation, "mm", cfg.size, "")
	m := cfg.margins
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(true, m.Bottom)
	if cfg.title != "" {
		pdf.SetTitle(cfg.title, true)
	}
	if cfg.author != "" {
		pdf.SetAuthor(cfg.author, true)
	}
	pdf.SetCreator("proposalpdf", false)
	pdf.AliasNbPages(PageTotal)

	d := &Document{
		pdf: pdf,
		cfg: cfg,
		imp: gofpdi.NewImporter(),
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	pdf.SetHeaderFuncMode(d.drawHeader, true)
	pdf.SetFooterFunc(d.drawFooter)
	return d
}

// AddPage starts a new page in the default format.
func (d *Document) AddPage() {
	d.pdf.AddPage()
}

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// SetBands installs the running header and footer. They are drawn only on
// pages added after this call; pages already in the document keep none.
func (d *Document) SetBands(header, footer Band) {
	d.header = header
	d.footer = footer
	d.bandsFrom = d.pdf.PageNo() + 1
}

// ApplyStylesheet layers s over the built-in markup styles.
func (d *Document) ApplyStylesheet(s *markup.Stylesheet) {
	if d.styles == nil {
		d.styles = markup.DefaultStylesheet()
	}
	d.styles = d.styles.Merge(s)
}

// WriteMarkup renders an HTML block at the current position, adding a
// page first if the document has none.
func (d *Document) WriteMarkup(body string) error {
	if d.pdf.PageNo() == 0 {
		d.pdf.AddPage()
	}
	w := markup.NewWriter(d.pdf, d.styles)
	w.SetImageRoots(d.cfg.imageRoots...)
	return w.Write(body)
}

// ImportAllPages appends every page of the file at path, in order, as new
// pages at the end of the document and returns how many were added. PDF
// pages keep their own media box. Images become one page, scaled to fit
// inside the margins.
func (d *Document) ImportAllPages(path string) (int, error) {
	if err := statSource(path); err != nil {
		return 0, err
	}
	switch Classify(path) {
	case SourcePDF:
		return d.importPDF(path)
	case SourceImage:
		return d.importImage(path)
	}
	return 0, sourceError(path, ErrUnsupportedType)
}

func (d *Document) importPDF(path string) (int, error) {
	sizes, err := PageSizes(path)
	if err != nil {
		return 0, err
	}

	tpls := make([]int, len(sizes))
	err = d.guard(func() {
		for i := range sizes {
			tpls[i] = d.imp.ImportPage(d.pdf, path, i+1, "/MediaBox")
		}
	})
	if err != nil {
		return 0, sourceError(path, err)
	}

	for i, size := range sizes {
		w, h := size.Width*ptToMM, size.Height*ptToMM
		d.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		d.imp.UseImportedTemplate(d.pdf, tpls[i], 0, 0, w, h)
	}
	if d.pdf.Err() {
		return 0, sourceError(path, fmt.Errorf("%w: %v", ErrSourceUnreadable, d.pdf.Error()))
	}
	return len(sizes), nil
}

// guard runs fn, turning importer panics and gofpdf's sticky error into a
// returned error. The gofpdf error is cleared so later pages still render.
func (d *Document) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if d.pdf.Err() {
			if err == nil {
				err = fmt.Errorf("%w: %v", ErrSourceUnreadable, d.pdf.Error())
			}
			d.pdf.ClearError()
		}
	}()
	fn()
	return nil
}

// Output finalizes the document and writes it to w.
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("pdfengine: output: %w", err)
	}
	return nil
}

func (d *Document) bandsOn() bool {
	return d.bandsFrom > 0 && d.pdf.PageNo() >= d.bandsFrom
}

func (d *Document) drawHeader() {
	if !d.bandsOn() || d.header.IsZero() {
		return
	}
	_, top, _, _ := d.pdf.GetMargins()
	y := top / 3
	d.drawBand(d.header, y, y+bandHeight+0.5)
}

func (d *Document) drawFooter() {
	if !d.bandsOn() || d.footer.IsZero() {
		return
	}
	_, pageH := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	y := pageH - bottom/3 - bandHeight
	d.drawBand(d.footer, y, y-0.5)
}

const bandHeight = 5.0

func (d *Document) drawBand(b Band, y, ruleY float64) {
	pdf := d.pdf
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	width := pageW - left - right

	pdf.SetFont(d.cfg.fontFamily, "I", d.cfg.fontSize)
	pdf.SetTextColor(0, 0, 0)
	for _, slot := range []struct{ text, align string }{
		{b.Left, "L"},
		{b.Center, "C"},
		{b.Right, "R"},
	} {
		if slot.text == "" {
			continue
		}
		pdf.SetXY(left, y)
		pdf.CellFormat(width, bandHeight, d.tr(d.expand(slot.text)), "", 0, slot.align, false, 0, "")
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, ruleY, pageW-right, ruleY)
}

func (d *Document) expand(text string) string {
	return strings.ReplaceAll(text, PageNumber, strconv.Itoa(d.pdf.PageNo()))
}
