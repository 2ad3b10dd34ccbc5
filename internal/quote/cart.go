package quote

import (
	"strings"

	"github.com/shopspring/decimal"

	"itemfinder/internal"
)

var hundred = decimal.NewFromInt(100)

// Cart holds at most one line per itemNo plus the discount input. The raw
// discount string is kept separate from the computed percentage so an empty
// input field can display as empty while totals compute with zero.
type Cart struct {
	lines       map[string]*internal.CartLine
	order       []string
	discountRaw string
}

func NewCart() *Cart {
	return &Cart{lines: map[string]*internal.CartLine{}}
}

// AddItem inserts a new line with quantity 1, or bumps the quantity of an
// existing line. Always succeeds.
func (c *Cart) AddItem(item internal.InventoryItem) {
	if line, ok := c.lines[item.ItemNo]; ok {
		line.Qty++
		line.Total = line.MRP.Mul(decimal.NewFromInt(int64(line.Qty)))
		return
	}
	c.lines[item.ItemNo] = &internal.CartLine{
		InventoryItem: item,
		Qty:           1,
		Total:         item.MRP,
	}
	c.order = append(c.order, item.ItemNo)
}

// UpdateQuantity sets the quantity of an existing line, clamping anything
// below 1 up to 1. Unknown itemNos are ignored rather than creating a
// phantom line.
func (c *Cart) UpdateQuantity(itemNo string, qty int) {
	line, ok := c.lines[itemNo]
	if !ok {
		return
	}
	if qty < 1 {
		qty = 1
	}
	line.Qty = qty
	line.Total = line.MRP.Mul(decimal.NewFromInt(int64(qty)))
}

func (c *Cart) RemoveItem(itemNo string) {
	if _, ok := c.lines[itemNo]; !ok {
		return
	}
	delete(c.lines, itemNo)
	for i, no := range c.order {
		if no == itemNo {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SetDiscountPercent stores the raw input as typed by the user. The computed
// percentage is derived on demand by DiscountPercent.
func (c *Cart) SetDiscountPercent(raw string) {
	c.discountRaw = raw
}

func (c *Cart) DiscountRaw() string {
	return c.discountRaw
}

// DiscountPercent returns the effective discount in [0,100]: empty or
// non-numeric input computes as 0, values outside the range clamp.
func (c *Cart) DiscountPercent() decimal.Decimal {
	parsed, err := decimal.NewFromString(strings.TrimSpace(c.discountRaw))
	if err != nil {
		return decimal.Zero
	}
	if parsed.IsNegative() {
		return decimal.Zero
	}
	if parsed.GreaterThan(hundred) {
		return hundred
	}
	return parsed
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []internal.CartLine {
	out := make([]internal.CartLine, 0, len(c.order))
	for _, no := range c.order {
		out = append(out, *c.lines[no])
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Totals computes the quotation view of the current lines and discount.
// Pure: no cart state changes.
func (c *Cart) Totals() internal.QuoteTotals {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Total)
	}

	discountAmount := subtotal.Mul(c.DiscountPercent()).Div(hundred)
	finalTotal := subtotal.Sub(discountAmount)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	return internal.QuoteTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		FinalTotal:     finalTotal,
	}
}

// Clear drops every line unconditionally. Triggered when the data source
// changes, since item identifiers may no longer be valid.
func (c *Cart) Clear() {
	c.lines = map[string]*internal.CartLine{}
	c.order = nil
	c.discountRaw = ""
}
