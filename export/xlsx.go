// Package export writes proposal cost breakdowns as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/proposalpdf/render"
)

// SheetName is the name of the cost breakdown worksheet.
const SheetName = "Cost Breakdown"

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Item", "Description", "Quantity", "Unit Price", "Amount"}

// moneyFormat is excelize's built-in "#,##0.00".
const moneyFormat = 4

// CostBreakdown writes the rows and total of the PDF cost table, with the
// quantity and unit price columns the PDF leaves out.
func CostBreakdown(w io.Writer, title, currency string, items []render.LineItem) error {
	if currency == "" {
		currency = render.DefaultCurrency
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "proposalpdf"})

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, h)
	}
	f.SetCellStyle(SheetName, "A1", "E1", bold)

	row := 2
	for _, it := range items {
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), it.Name)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), it.Description)
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), it.Quantity)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), it.UnitPrice)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), it.TotalPrice)
		row++
	}
	if row > 2 {
		f.SetCellStyle(SheetName, "D2", fmt.Sprintf("E%d", row-1), money)
	}

	f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("Total (%s)", currency))
	f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), render.Total(items))
	f.SetCellStyle(SheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), bold)
	f.SetCellStyle(SheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), boldMoney)

	f.SetColWidth(SheetName, "A", "A", 30)
	f.SetColWidth(SheetName, "B", "B", 50)
	f.SetColWidth(SheetName, "C", "E", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

// Filename returns the workbook name for a PDF file name.
func Filename(pdfName string) string {
	return strings.TrimSuffix(pdfName, ".pdf") + ".xlsx"
}
