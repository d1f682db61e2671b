// Package markup writes the HTML produced for document bodies onto gofpdf
// pages, styled by a small CSS stylesheet.
//
// Only the markup the renderers emit is understood: headings, paragraphs,
// field label/value blocks, lists, tables, line breaks, images, signature
// grids and QR codes. Unknown elements are descended into and their text
// is written as paragraphs.
package markup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lvillar/proposalpdf/table"
)

// Writer appends markup at the current position of a gofpdf document.
type Writer struct {
	pdf    *gofpdf.Fpdf
	styles *Stylesheet
	tr     func(string) string
	base   Style
	roots  []string
	err    error
}

// NewWriter returns a writer for pdf. A nil stylesheet means the built-in
// default.
func NewWriter(pdf *gofpdf.Fpdf, styles *Stylesheet) *Writer {
	if styles == nil {
		styles = DefaultStylesheet()
	}
	w := &Writer{
		pdf:    pdf,
		styles: styles,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	w.base = styles.Resolve(Style{FontFamily: "Helvetica", FontSize: 10}, "body", nil, nil)
	return w
}

// SetImageRoots limits <img> sources to relative paths inside one of the
// given directories. Images outside them, remote URLs and files that fail to
// load are skipped.
func (w *Writer) SetImageRoots(roots ...string) *Writer {
	w.roots = roots
	return w
}

// Write renders markup starting at the current cursor position.
func (w *Writer) Write(markup string) error {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return fmt.Errorf("markup: parse: %w", err)
	}
	w.err = nil
	w.blocks(nodes, w.base, nil)
	w.reset(w.base)
	if w.err != nil {
		return fmt.Errorf("markup: %w", w.err)
	}
	if w.pdf.Err() {
		return fmt.Errorf("markup: %w", w.pdf.Error())
	}
	return nil
}

func (w *Writer) blocks(nodes []*html.Node, parent Style, ancestors []string) {
	var run []*html.Node
	flush := func() {
		if len(run) > 0 && hasText(run) {
			w.paragraph(run, parent)
		}
		run = nil
	}
	for _, n := range nodes {
		if isInline(n) {
			run = append(run, n)
			continue
		}
		flush()
		w.block(n, parent, ancestors)
	}
	flush()
}

func (w *Writer) block(n *html.Node, parent Style, ancestors []string) {
	if n.Type != html.ElementNode {
		return
	}
	classes := classList(n)
	st := w.styles.Resolve(parent, n.Data, classes, ancestors)
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.heading(n, st)
	case atom.P:
		w.spaceBefore(st)
		w.paragraph(childNodes(n), st)
		w.spaceAfter(st)
	case atom.Ul, atom.Ol:
		w.list(n, st, ancestors)
	case atom.Table:
		if hasClass(n, "signature-lines") {
			w.signatures(n, st, append(ancestors, classes...))
		} else {
			w.table(n, st, append(ancestors, classes...))
		}
	case atom.Hr:
		w.rule(0.3, nil)
	case atom.Img:
		w.image(n)
	case atom.Script, atom.Style, atom.Head:
	default:
		if hasClass(n, "qr") {
			w.qr(attr(n, "data-value"))
			return
		}
		if hasClass(n, "field-label") {
			w.spaceBefore(st)
			w.font(st)
			w.pdf.MultiCell(w.contentWidth(), w.lineHeight(st), w.tr(collapse(textContent(n))), "", align(st), false)
			w.spaceAfter(st)
			return
		}
		w.spaceBefore(st)
		w.blocks(childNodes(n), st, append(ancestors, classes...))
		w.spaceAfter(st)
	}
	w.reset(w.base)
}

func (w *Writer) heading(n *html.Node, st Style) {
	if st.FontSize == 0 {
		st.FontSize = w.base.FontSize
	}
	w.spaceBefore(st)
	w.font(st)
	left, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetX(left)
	w.pdf.MultiCell(w.contentWidth(), w.lineHeight(st), w.tr(collapse(textContent(n))), "", align(st), false)
	if st.BorderBottom > 0 {
		w.rule(st.BorderBottom, st.BorderColor)
	}
	w.spaceAfter(st)
}

// paragraph flows inline content between the page margins.
func (w *Writer) paragraph(nodes []*html.Node, st Style) {
	if !hasText(nodes) {
		return
	}
	left, _, _, _ := w.pdf.GetMargins()
	if w.pdf.GetX() < left {
		w.pdf.SetX(left)
	}
	lineH := w.lineHeight(st)
	atStart := true
	w.inline(nodes, st, lineH, &atStart)
	w.pdf.Ln(lineH)
}

func (w *Writer) inline(nodes []*html.Node, st Style, lineH float64, atStart *bool) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			txt := collapse(n.Data)
			if *atStart {
				txt = strings.TrimLeft(txt, " ")
			}
			if txt == "" {
				continue
			}
			w.font(st)
			w.pdf.Write(lineH, w.tr(txt))
			*atStart = false
		case html.ElementNode:
			child := st
			switch n.DataAtom {
			case atom.B, atom.Strong:
				t := true
				child.Bold = &t
			case atom.I, atom.Em:
				t := true
				child.Italic = &t
			case atom.Br:
				w.pdf.Ln(lineH)
				*atStart = true
				continue
			case atom.A:
				if href := attr(n, "href"); href != "" {
					w.font(child)
					w.pdf.SetTextColor(0, 0, 238)
					w.pdf.WriteLinkString(lineH, w.tr(collapse(textContent(n))), href)
					w.color(child)
					*atStart = false
					continue
				}
			default:
				child = w.styles.Resolve(st, n.Data, classList(n), nil)
			}
			w.inline(childNodes(n), child, lineH, atStart)
		}
	}
}

func (w *Writer) list(n *html.Node, st Style, ancestors []string) {
	left, _, _, _ := w.pdf.GetMargins()
	indent := 6.0
	lineH := w.lineHeight(st)
	w.spaceBefore(st)
	i := 0
	for _, li := range childNodes(n) {
		if li.DataAtom != atom.Li {
			continue
		}
		i++
		marker := "•"
		if n.DataAtom == atom.Ol {
			marker = fmt.Sprintf("%d.", i)
		}
		w.font(st)
		w.pdf.SetX(left + 1.5)
		w.pdf.CellFormat(indent-1.5, lineH, w.tr(marker), "", 0, "L", false, 0, "")
		w.pdf.SetLeftMargin(left + indent)
		atStart := true
		w.inline(childNodes(li), w.styles.Resolve(st, "li", classList(li), ancestors), lineH, &atStart)
		w.pdf.Ln(lineH)
		w.pdf.SetLeftMargin(left)
	}
	w.spaceAfter(st)
}

func (w *Writer) table(n *html.Node, st Style, ancestors []string) {
	left, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetX(left)
	w.pdf.Ln(1)

	th := w.styles.Resolve(st, "th", nil, ancestors)
	td := w.styles.Resolve(st, "td", nil, ancestors)
	tb := table.New(w.pdf).SetTranslator(w.tr)
	tb.SetStyle(table.Style{
		CellPadding: table.UniformPadding(1.8),
		Border:      &table.BorderStyle{Width: 0.2, Color: table.RGBColor{R: 190, G: 190, B: 190}},
		CellFont:    fontSpec(td),
		HeaderStyle: cellStyle(th),
	})

	for _, tr := range rowsOf(n) {
		var row *table.Row
		if isHeaderRow(tr) {
			row = tb.AddHeaderRow()
		} else {
			row = tb.AddRow()
		}
		if cls := classList(tr); len(cls) > 0 {
			rs := w.styles.Resolve(td, "tr", cls, ancestors)
			row.SetStyle(*cellStyle(rs))
		}
		for _, c := range childNodes(tr) {
			if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
				continue
			}
			cell := row.AddCell(collapse(textContent(c)))
			if span := atoi(attr(c, "colspan")); span > 1 {
				cell.SetColspan(span)
			}
		}
	}
	w.pdf.SetFont(td.FontFamily, td.FontStyle(), td.FontSize)
	if err := tb.Render(); err != nil {
		if w.err == nil {
			w.err = fmt.Errorf("table: %w", err)
		}
		return
	}
	w.pdf.Ln(2)
}

// signatures draws each cell as a blank signature line with its text as the
// caption beneath.
func (w *Writer) signatures(n *html.Node, st Style, ancestors []string) {
	left, _, _, _ := w.pdf.GetMargins()
	td := w.styles.Resolve(st, "td", nil, ancestors)
	lineH := w.lineHeight(td)
	for _, tr := range rowsOf(n) {
		var cells []*html.Node
		for _, c := range childNodes(tr) {
			if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		colW := w.contentWidth() / float64(len(cells))
		w.pdf.Ln(14)
		y := w.pdf.GetY()
		w.pdf.SetDrawColor(0, 0, 0)
		w.pdf.SetLineWidth(0.3)
		for i, c := range cells {
			x := left + float64(i)*colW
			w.pdf.Line(x, y, x+colW*0.8, y)
			w.pdf.SetXY(x, y+1)
			w.font(td)
			w.pdf.CellFormat(colW*0.8, lineH, w.tr(collapse(textContent(c))), "", 0, "L", false, 0, "")
		}
		w.pdf.SetXY(left, y+1+lineH)
	}
	w.pdf.SetLineWidth(0.2)
	w.pdf.Ln(4)
}

func (w *Writer) qr(value string) {
	if value == "" {
		return
	}
	key := barcode.RegisterQR(w.pdf, value, qr.M, qr.Unicode)
	const size = 25.0
	left, _, _, _ := w.pdf.GetMargins()
	y := w.pdf.GetY() + 4
	barcode.Barcode(w.pdf, key, left, y, size, size, false)
	w.pdf.SetXY(left, y+size+2)
}

func (w *Writer) image(n *html.Node) {
	path, ok := w.imagePath(attr(n, "src"))
	if !ok || w.pdf.Err() {
		return
	}
	w.pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ReadDpi: true})
	if w.pdf.Err() {
		w.pdf.ClearError()
		return
	}
	left, _, _, _ := w.pdf.GetMargins()
	width := w.contentWidth()
	if v := atoi(attr(n, "width")); v > 0 && float64(v)*25.4/96 < width {
		width = float64(v) * 25.4 / 96
	}
	w.pdf.ImageOptions(path, left, w.pdf.GetY(), width, 0, true, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
}

// imagePath resolves src against the image roots. Only relative paths that
// stay inside a root and name an existing regular file are accepted.
func (w *Writer) imagePath(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, ":") || strings.HasPrefix(src, "//") || filepath.IsAbs(src) {
		return "", false
	}
	rel := filepath.Clean(filepath.FromSlash(src))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	for _, root := range w.roots {
		if root == "" {
			continue
		}
		p := filepath.Join(root, rel)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

func (w *Writer) rule(width float64, c *table.RGBColor) {
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY() + 0.5
	if c != nil {
		w.pdf.SetDrawColor(c.R, c.G, c.B)
	} else {
		w.pdf.SetDrawColor(0, 0, 0)
	}
	w.pdf.SetLineWidth(width)
	w.pdf.Line(left, y, pageW-right, y)
	w.pdf.SetLineWidth(0.2)
	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetY(y + 1)
}

func (w *Writer) spaceBefore(st Style) {
	if st.MarginTop != nil && *st.MarginTop > 0 {
		w.pdf.Ln(*st.MarginTop)
	}
}

func (w *Writer) spaceAfter(st Style) {
	if st.MarginBottom != nil && *st.MarginBottom > 0 {
		w.pdf.Ln(*st.MarginBottom)
	}
}

func (w *Writer) font(st Style) {
	size := st.FontSize
	if size == 0 {
		size = w.base.FontSize
	}
	family := st.FontFamily
	if family == "" {
		family = "Helvetica"
	}
	w.pdf.SetFont(family, st.FontStyle(), size)
	w.color(st)
}

func (w *Writer) color(st Style) {
	if st.Color != nil {
		w.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
	} else {
		w.pdf.SetTextColor(0, 0, 0)
	}
}

func (w *Writer) reset(st Style) {
	w.font(st)
	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetFillColor(255, 255, 255)
}

func (w *Writer) lineHeight(st Style) float64 {
	size := st.FontSize
	if size == 0 {
		size = w.base.FontSize
	}
	return size * 25.4 / 72 * 1.4
}

func (w *Writer) contentWidth() float64 {
	pageW, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	return pageW - left - right
}

func align(st Style) string {
	if st.Align == "" {
		return "L"
	}
	return st.Align
}

func fontSpec(st Style) *table.FontSpec {
	return &table.FontSpec{Family: st.FontFamily, Style: st.FontStyle(), Size: st.FontSize}
}

func cellStyle(st Style) *table.CellStyle {
	cs := &table.CellStyle{
		FillColor: st.Background,
		TextColor: st.Color,
		Font:      fontSpec(st),
	}
	if st.Align != "" && st.Align != "J" {
		cs.Align = st.Align
	}
	return cs
}
