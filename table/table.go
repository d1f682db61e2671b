package table

// Canvas is the subset of *gofpdf.Fpdf a table draws with.
type Canvas interface {
	Err() bool
	Error() error
	AddPage()
	GetX() float64
	GetY() float64
	SetX(x float64)
	SetXY(x, y float64)
	GetPageSize() (width, height float64)
	GetMargins() (left, top, right, bottom float64)
	GetFontSize() (ptSize, unitSize float64)
	SetFont(familyStr, styleStr string, size float64)
	SetFontSize(size float64)
	SplitLines(txt []byte, w float64) [][]byte
	SetFillColor(r, g, b int)
	SetDrawColor(r, g, b int)
	SetTextColor(r, g, b int)
	SetLineWidth(width float64)
	Rect(x, y, w, h float64, styleStr string)
	MultiCell(w, h float64, txtStr, borderStr, alignStr string, fill bool)
}

// Column configures one column. A zero Width shares the remaining space
// with the other auto columns.
type Column struct {
	Width    float64
	MinWidth float64
	Align    string
}

// Table collects rows and renders them at the current cursor position.
type Table struct {
	pdf       Canvas
	columns   []Column
	rows      []*Row
	style     Style
	width     float64
	translate func(string) string
}

// New returns an empty table drawing on pdf.
func New(pdf Canvas) *Table {
	return &Table{
		pdf:   pdf,
		style: Style{CellPadding: UniformPadding(1.5)},
	}
}

// SetColumns replaces the column definitions.
func (t *Table) SetColumns(cols ...Column) *Table {
	t.columns = cols
	return t
}

// SetColumnWidths defines one column per width; zero means auto.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.columns = make([]Column, len(widths))
	for i, w := range widths {
		t.columns[i] = Column{Width: w}
	}
	return t
}

// SetStyle replaces the table style.
func (t *Table) SetStyle(s Style) *Table {
	t.style = s
	return t
}

// SetWidth fixes the total table width. By default the table fills the
// space between the page margins.
func (t *Table) SetWidth(w float64) *Table {
	t.width = w
	return t
}

// SetTranslator sets the function applied to cell text before it is
// measured and drawn, typically the font's UTF-8 translator.
func (t *Table) SetTranslator(fn func(string) string) *Table {
	t.translate = fn
	return t
}

// AddHeaderRow appends a row repeated at the top of every page the table
// spans. Header rows always render before body rows.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	t.rows = append(t.rows, r)
	return r
}

// AddRow appends a body row.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// Rows returns header and body rows in insertion order.
func (t *Table) Rows() []*Row { return t.rows }

// Render draws the table and leaves the cursor below its last row.
func (t *Table) Render() error {
	if t.pdf.Err() {
		return t.pdf.Error()
	}
	widths := t.Widths()
	if len(widths) == 0 {
		return nil
	}
	startX := t.pdf.GetX()

	var headers, body []*Row
	for _, r := range t.rows {
		if r.isHeader {
			headers = append(headers, r)
		} else {
			body = append(body, r)
		}
	}

	for _, r := range headers {
		t.breakIfNeeded(r, widths, startX, nil)
		t.renderRow(r, widths, startX, -1)
	}
	for i, r := range body {
		t.breakIfNeeded(r, widths, startX, headers)
		t.renderRow(r, widths, startX, i)
	}
	return t.pdf.Error()
}

func (t *Table) breakIfNeeded(r *Row, widths []float64, startX float64, headers []*Row) {
	_, pageH := t.pdf.GetPageSize()
	_, _, _, bottom := t.pdf.GetMargins()
	if t.pdf.GetY()+t.rowHeight(r, widths, -1) <= pageH-bottom {
		return
	}
	t.pdf.AddPage()
	t.pdf.SetX(startX)
	for _, h := range headers {
		t.renderRow(h, widths, startX, -1)
	}
}

// Widths resolves the final column widths. Without column definitions the
// widest row decides the column count and every column is auto.
func (t *Table) Widths() []float64 {
	total := t.width
	if total == 0 {
		pageW, _ := t.pdf.GetPageSize()
		left, _, right, _ := t.pdf.GetMargins()
		total = pageW - left - right
	}

	cols := t.columns
	if len(cols) == 0 {
		n := 0
		for _, r := range t.rows {
			if s := r.Span(); s > n {
				n = s
			}
		}
		cols = make([]Column, n)
	}
	if len(cols) == 0 {
		return nil
	}

	widths := make([]float64, len(cols))
	fixed, auto := 0.0, 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			auto++
		}
	}
	if auto > 0 {
		share := (total - fixed) / float64(auto)
		if share < 0 {
			share = 0
		}
		for i, c := range cols {
			if c.Width == 0 {
				widths[i] = share
				if c.MinWidth > share {
					widths[i] = c.MinWidth
				}
			}
		}
	}
	return widths
}

// span returns the width covered by a cell starting at column col.
func span(widths []float64, col, colspan int) float64 {
	w := 0.0
	for j := 0; j < colspan && col+j < len(widths); j++ {
		w += widths[col+j]
	}
	return w
}

func (t *Table) text(s string) string {
	if t.translate != nil {
		return t.translate(s)
	}
	return s
}

func (t *Table) lineHeight() float64 {
	_, size := t.pdf.GetFontSize()
	factor := t.style.LineHeight
	if factor == 0 {
		factor = 1.4
	}
	return size * factor
}

func (t *Table) applyFont(style CellStyle) {
	if style.Font != nil {
		t.pdf.SetFont(style.Font.Family, style.Font.Style, style.Font.Size)
	}
}

// rowHeight measures every cell with its own font.
func (t *Table) rowHeight(r *Row, widths []float64, bodyIdx int) float64 {
	pad := t.style.CellPadding
	h := r.minH
	col := 0
	for _, c := range r.cells {
		if col >= len(widths) {
			break
		}
		t.applyFont(t.cellStyle(c, r, bodyIdx))
		w := span(widths, col, c.colspan) - pad.Left - pad.Right
		if w < 1 {
			w = 1
		}
		lines := len(t.pdf.SplitLines([]byte(t.text(c.text)), w))
		if lines == 0 {
			lines = 1
		}
		if ch := float64(lines)*t.lineHeight() + pad.Top + pad.Bottom; ch > h {
			h = ch
		}
		col += c.colspan
	}
	return h
}

func (t *Table) renderRow(r *Row, widths []float64, startX float64, bodyIdx int) {
	h := t.rowHeight(r, widths, bodyIdx)
	pad := t.style.CellPadding
	y := t.pdf.GetY()
	x := startX

	if b := t.style.Border; b != nil && b.Width > 0 {
		t.pdf.SetDrawColor(b.Color.R, b.Color.G, b.Color.B)
		t.pdf.SetLineWidth(b.Width)
	}

	col := 0
	for _, c := range r.cells {
		if col >= len(widths) {
			break
		}
		w := span(widths, col, c.colspan)
		style := t.cellStyle(c, r, bodyIdx)

		if style.FillColor != nil {
			t.pdf.SetFillColor(style.FillColor.R, style.FillColor.G, style.FillColor.B)
			t.pdf.Rect(x, y, w, h, "F")
		}
		if b := t.style.Border; b != nil && b.Width > 0 {
			t.pdf.Rect(x, y, w, h, "D")
		}

		if style.TextColor != nil {
			t.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
		} else {
			t.pdf.SetTextColor(0, 0, 0)
		}
		t.applyFont(style)

		align := style.Align
		if align == "" && col < len(t.columns) {
			align = t.columns[col].Align
		}
		if align == "" {
			align = "L"
		}
		t.pdf.SetXY(x+pad.Left, y+pad.Top)
		t.pdf.MultiCell(w-pad.Left-pad.Right, t.lineHeight(), t.text(c.text), "", align, false)

		x += w
		col += c.colspan
	}

	t.pdf.SetTextColor(0, 0, 0)
	t.pdf.SetXY(startX, y+h)
}

// cellStyle merges table font, header or alternate row style, row style
// and cell style, in increasing priority.
func (t *Table) cellStyle(c *Cell, r *Row, bodyIdx int) CellStyle {
	var s CellStyle
	s.Font = t.style.CellFont
	if r.isHeader {
		s.Merge(t.style.HeaderStyle)
	} else if alt := t.style.AlternateRows; alt != nil && bodyIdx >= 0 {
		if bodyIdx%2 == 0 {
			s.Merge(&alt.Even)
		} else {
			s.Merge(&alt.Odd)
		}
	}
	s.Merge(r.style)
	s.Merge(c.style)
	return s
}
