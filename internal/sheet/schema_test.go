package sheet

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolveColumns(t *testing.T) {
	headers := []string{"Item No.", "ITEM DESCRIPTION", "Item Group", "Model", "BHL/HLN Flag", "HSN Tax %", "Sale Rate", "MRP"}
	columns := ResolveColumns(headers)

	expect := map[string]int{
		FieldItemNo:      0,
		FieldDescription: 1,
		FieldGroup:       2,
		FieldModel:       3,
		FieldBhlHlnFlag:  4,
		FieldHsnTax:      5,
		FieldSaleRate:    6,
		FieldMRP:         7,
	}
	for field, idx := range expect {
		if got, ok := columns[field]; !ok || got != idx {
			t.Fatalf("field %s: got %d (present=%v) want %d", field, got, ok, idx)
		}
	}
}

func TestResolveColumnsFirstMatchWins(t *testing.T) {
	// "Rate" appears in two headers; the leftmost one wins for saleRate.
	headers := []string{"Tax Rate", "Sale Rate"}
	columns := ResolveColumns(headers)
	if columns[FieldSaleRate] != 0 {
		t.Fatalf("saleRate resolved to %d, first-match-left-to-right expects 0", columns[FieldSaleRate])
	}
}

func TestExtractItem(t *testing.T) {
	headers := []string{"Item No", "Description", "MRP"}
	columns := ResolveColumns(headers)

	item, ok := ExtractItem([]string{"A-1", "Widget", "₹1,234.50"}, columns, len(headers))
	if !ok {
		t.Fatal("row rejected")
	}
	if item.ItemNo != "A-1" || item.Description != "Widget" {
		t.Fatalf("bad item: %+v", item)
	}
	if !item.MRP.Equal(decimal.NewFromFloat(1234.5)) {
		t.Fatalf("mrp=%s", item.MRP)
	}
}

func TestExtractItemRejections(t *testing.T) {
	headers := []string{"Item No", "Description", "MRP"}
	columns := ResolveColumns(headers)

	if _, ok := ExtractItem([]string{"A-1", "Widget"}, columns, len(headers)); ok {
		t.Fatal("row shorter than header accepted")
	}
	if _, ok := ExtractItem([]string{"", "Widget", "10"}, columns, len(headers)); ok {
		t.Fatal("empty itemNo accepted")
	}
	if _, ok := ExtractItem([]string{"A-1", "", "10"}, columns, len(headers)); ok {
		t.Fatal("empty description accepted")
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		input string
		want  decimal.Decimal
	}{
		{input: "₹1,234.50", want: decimal.NewFromFloat(1234.5)},
		{input: "abc", want: decimal.Zero},
		{input: "", want: decimal.Zero},
		{input: "18%", want: decimal.NewFromInt(18)},
		{input: "-5", want: decimal.NewFromInt(-5)},
		{input: "Rs 99", want: decimal.NewFromInt(99)},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got := ParseNumber(tc.input)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}
