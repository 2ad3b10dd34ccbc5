package sheet

import (
	"strings"

	"github.com/shopspring/decimal"

	"itemfinder/internal"
)

// Canonical item fields, in the order they are resolved against a header row.
const (
	FieldItemNo      = "itemNo"
	FieldDescription = "description"
	FieldGroup       = "group"
	FieldModel       = "model"
	FieldBhlHlnFlag  = "bhlHlnFlag"
	FieldHsnTax      = "hsnTax"
	FieldSaleRate    = "saleRate"
	FieldMRP         = "mrp"
)

// columnProbes maps each canonical field to the header substrings that may
// name its column in a spreadsheet export. Matching is case-insensitive and
// the first header containing any probe wins, so overlapping probes (e.g.
// "rate" vs "hsn tax") resolve left to right, not by best match.
var columnProbes = map[string][]string{
	FieldItemNo:      {"item no", "item no.", "part no", "id"},
	FieldDescription: {"item description", "description", "desc", "name"},
	FieldGroup:       {"item group", "group", "category"},
	FieldModel:       {"model", "model no"},
	FieldBhlHlnFlag:  {"bhl/hln flag", "flag", "type"},
	FieldHsnTax:      {"hsn tax %", "hsn tax", "tax", "gst"},
	FieldSaleRate:    {"sale rate", "rate", "price"},
	FieldMRP:         {"mrp", "maximum retail price"},
}

// ResolveColumns maps canonical fields to column indexes in the given header
// row. Fields with no matching header are absent from the result.
func ResolveColumns(headers []string) map[string]int {
	norm := make([]string, 0, len(headers))
	for _, h := range headers {
		norm = append(norm, strings.ToLower(strings.TrimSpace(h)))
	}

	out := map[string]int{}
	for field, probes := range columnProbes {
		if idx := findHeaderIndex(norm, probes); idx >= 0 {
			out[field] = idx
		}
	}
	return out
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

// ExtractItem builds an item from one parsed data row. Rows shorter than the
// header row are rejected outright, and a row only materializes when both
// itemNo and description come out non-empty. Everything else defaults.
func ExtractItem(fields []string, columns map[string]int, headerLen int) (internal.InventoryItem, bool) {
	if len(fields) < headerLen {
		return internal.InventoryItem{}, false
	}

	text := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}
	number := func(field string) decimal.Decimal {
		return ParseNumber(text(field))
	}

	item := internal.InventoryItem{
		ItemNo:      text(FieldItemNo),
		Description: text(FieldDescription),
		Group:       text(FieldGroup),
		Model:       text(FieldModel),
		BhlHlnFlag:  text(FieldBhlHlnFlag),
		HsnTax:      number(FieldHsnTax),
		SaleRate:    number(FieldSaleRate),
		MRP:         number(FieldMRP),
	}

	if item.ItemNo == "" || item.Description == "" {
		return internal.InventoryItem{}, false
	}
	return item, true
}

// ParseNumber coerces a raw cell value to a number by stripping everything
// that is not a digit, a decimal point or a minus sign (currency symbols,
// thousands separators) before parsing. Unparseable input yields zero.
func ParseNumber(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	parsed, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
