// Package table draws bordered, wrapped-text tables onto a gofpdf page:
// cost breakdowns, payment schedules and signature grids.
//
// Headers repeat after page breaks, rows may alternate fill colours and
// cells may span several columns.
package table

// RGBColor is an RGB colour with components in 0..255.
type RGBColor struct {
	R, G, B int
}

// FontSpec names a core font, its style ("", "B", "I", "BI") and size in
// points.
type FontSpec struct {
	Family string
	Style  string
	Size   float64
}

// Padding is the space between a cell's border and its text.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding returns the same padding on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle is the stroke used for cell borders. A zero Width draws no
// borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// CellStyle is merged from table, row and cell level; nil fields inherit.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C" or "R"
}

// AlternateStyle colours even and odd body rows.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// Style is the table-wide appearance.
type Style struct {
	Border        *BorderStyle
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellPadding   Padding
	CellFont      *FontSpec
	// LineHeight is the height of one text line as a multiple of the font
	// size. Zero means 1.4.
	LineHeight float64
}

// Merge copies the set fields of src over dst.
func (dst *CellStyle) Merge(src *CellStyle) {
	if src == nil {
		return
	}
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}
