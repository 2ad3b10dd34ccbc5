package quote

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"itemfinder/internal"
)

// QuotationFilename returns a timestamped output path under dir.
func QuotationFilename(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("Quotation_%s.xlsx", now.Format("20060102-150405")))
}

// WriteQuotationXLSX renders the finalized line items plus a summary block
// and the footer watermark into an XLSX workbook at outputPath.
func WriteQuotationXLSX(lines []internal.CartLine, totals internal.QuoteTotals, watermark, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Item No", "Description", "Qty", "MRP", "Total"}
	for i, h := range headers {
		set(i+1, 1, h)
	}

	for i, line := range lines {
		r := i + 2
		set(1, r, line.ItemNo)
		set(2, r, line.Description)
		set(3, r, line.Qty)
		set(4, r, line.MRP.InexactFloat64())
		set(5, r, line.Total.InexactFloat64())
	}

	summaryRow := len(lines) + 3
	set(4, summaryRow, "Subtotal")
	set(5, summaryRow, totals.Subtotal.InexactFloat64())
	set(4, summaryRow+1, "Discount")
	set(5, summaryRow+1, totals.DiscountAmount.Neg().InexactFloat64())
	set(4, summaryRow+2, "Total")
	set(5, summaryRow+2, totals.FinalTotal.InexactFloat64())

	set(1, summaryRow+4, watermark)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
