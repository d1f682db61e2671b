package table_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/proposalpdf/table"
)

func newTestPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 30, 18)
	pdf.SetAutoPageBreak(true, 30)
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()
	return pdf
}

func costTable(pdf *gofpdf.Fpdf) *table.Table {
	tb := table.New(pdf)
	tb.SetStyle(table.Style{
		CellPadding: table.UniformPadding(2),
		Border:      &table.BorderStyle{Width: 0.2, Color: table.RGBColor{R: 200, G: 200, B: 200}},
		HeaderStyle: &table.CellStyle{
			FillColor: &table.RGBColor{R: 171, G: 29, B: 28},
			TextColor: &table.RGBColor{R: 255, G: 255, B: 255},
			Font:      &table.FontSpec{Family: "Helvetica", Style: "B", Size: 10},
		},
		AlternateRows: &table.AlternateStyle{
			Even: table.CellStyle{FillColor: &table.RGBColor{R: 245, G: 245, B: 245}},
			Odd:  table.CellStyle{FillColor: &table.RGBColor{R: 255, G: 255, B: 255}},
		},
	})
	h := tb.AddHeaderRow()
	h.AddCell("Item")
	h.AddCell("Description")
	h.AddCell("Amount").SetAlign("R")
	return tb
}

func TestRenderCostTable(t *testing.T) {
	pdf := newTestPDF()
	tb := costTable(pdf)

	r := tb.AddRow()
	r.AddCell("Design")
	r.AddCell("Homepage and five inner page layouts")
	r.AddCell("50,000.00").SetAlign("R")

	total := tb.AddRow().SetStyle(table.CellStyle{Font: &table.FontSpec{Family: "Helvetica", Style: "B", Size: 10}})
	total.AddCell("Total (PHP)").SetColspan(2)
	total.AddCell("50,000.00").SetAlign("R")

	y0 := pdf.GetY()
	if err := tb.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if pdf.GetY() <= y0 {
		t.Errorf("cursor did not advance: %v <= %v", pdf.GetY(), y0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PDF")
	}
}

func TestWidths(t *testing.T) {
	pdf := newTestPDF()

	tb := table.New(pdf).SetColumnWidths(40, 0, 0)
	got := tb.Widths()
	// A4 is 210mm wide, minus 18mm margins on both sides.
	want := []float64{40, 67, 67}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.001 {
			t.Errorf("width[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	auto := table.New(pdf)
	r := auto.AddRow()
	r.AddCell("a").SetColspan(2)
	r.AddCell("b")
	if n := len(auto.Widths()); n != 3 {
		t.Errorf("inferred %d columns, want 3", n)
	}
}

func TestRenderBreaksPagesAndRepeatsHeader(t *testing.T) {
	pdf := newTestPDF()
	tb := costTable(pdf)
	for i := 0; i < 80; i++ {
		r := tb.AddRow()
		r.AddCellf("Item %d", i)
		r.AddCell("Line item description")
		r.AddCell("1,000.00")
	}
	if err := tb.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if pdf.PageNo() < 2 {
		t.Errorf("PageNo = %d, want the table to span pages", pdf.PageNo())
	}
	_, pageH := pdf.GetPageSize()
	if pdf.GetY() > pageH-30 {
		t.Errorf("cursor %v below bottom margin", pdf.GetY())
	}
}

func TestRenderEmptyTable(t *testing.T) {
	pdf := newTestPDF()
	if err := table.New(pdf).Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRowSpan(t *testing.T) {
	tb := table.New(newTestPDF())
	r := tb.AddRow()
	r.AddCell("x").SetColspan(2)
	r.AddCell("y")
	if r.Span() != 3 {
		t.Errorf("Span = %d, want 3", r.Span())
	}
	if len(tb.Rows()) != 1 || r.Cells()[0].Colspan() != 2 || r.Cells()[0].Text() != "x" {
		t.Error("unexpected row contents")
	}
}
