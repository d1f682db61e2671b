package table

import "fmt"

// Cell is one text cell of a row.
type Cell struct {
	text    string
	colspan int
	style   *CellStyle
}

// Text returns the cell text.
func (c *Cell) Text() string { return c.text }

// Colspan returns the number of columns the cell covers.
func (c *Cell) Colspan() int { return c.colspan }

// SetColspan makes the cell span n columns.
func (c *Cell) SetColspan(n int) *Cell {
	if n > 0 {
		c.colspan = n
	}
	return c
}

// SetStyle overrides the row and table styles for this cell.
func (c *Cell) SetStyle(s CellStyle) *Cell {
	c.style = &s
	return c
}

// SetAlign sets the horizontal alignment of this cell.
func (c *Cell) SetAlign(align string) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Align = align
	return c
}

// Row is an ordered list of cells.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
	minH     float64
}

// AddCell appends a text cell.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text, colspan: 1}
	r.cells = append(r.cells, c)
	return c
}

// AddCellf appends a formatted text cell.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// Cells returns the row's cells.
func (r *Row) Cells() []*Cell { return r.cells }

// Span returns the number of columns covered by the row.
func (r *Row) Span() int {
	n := 0
	for _, c := range r.cells {
		n += c.colspan
	}
	return n
}

// SetStyle applies s to every cell of the row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// SetMinHeight sets the minimum row height in document units.
func (r *Row) SetMinHeight(h float64) *Row {
	r.minH = h
	return r
}
