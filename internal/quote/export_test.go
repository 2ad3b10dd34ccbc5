package quote

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteQuotationXLSX(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A-1", 500))
	c.AddItem(item("A-2", 250))
	c.SetDiscountPercent("10")

	out := filepath.Join(t.TempDir(), "quote.xlsx")
	if err := WriteQuotationXLSX(c.Lines(), c.Totals(), "watermark text", out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}

	if rows[0][0] != "Item No" {
		t.Fatalf("header row: %v", rows[0])
	}
	if rows[1][0] != "A-1" || rows[2][0] != "A-2" {
		t.Fatalf("line rows: %v %v", rows[1], rows[2])
	}

	flat := strings.Join(flatten(rows), "|")
	for _, want := range []string{"Subtotal", "Discount", "Total", "watermark text"} {
		if !strings.Contains(flat, want) {
			t.Fatalf("missing %q in sheet", want)
		}
	}
}

func TestQuotationFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	got := QuotationFilename("/tmp/out", now)
	if got != filepath.Join("/tmp/out", "Quotation_20260830-140509.xlsx") {
		t.Fatalf("got %s", got)
	}
}

func flatten(rows [][]string) []string {
	out := []string{}
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
