package internal

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is one catalog entry, produced by a fetch-and-parse cycle.
// The whole set is replaced wholesale on every successful reload.
type InventoryItem struct {
	ItemNo      string          `json:"itemNo"`
	Description string          `json:"description"`
	Group       string          `json:"group"`
	Model       string          `json:"model"`
	BhlHlnFlag  string          `json:"bhlHlnFlag"`
	HsnTax      decimal.Decimal `json:"hsnTax"`
	SaleRate    decimal.Decimal `json:"saleRate"`
	MRP         decimal.Decimal `json:"mrp"`
}

// CartLine is an inventory item plus the requested quantity. Total is
// recomputed on every mutation, never set directly.
type CartLine struct {
	InventoryItem
	Qty   int             `json:"qty"`
	Total decimal.Decimal `json:"total"`
}

type QuoteTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
}

type AppConfig struct {
	SourceURL   *string   `json:"sourceUrl"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type FetchLogRow struct {
	ID        int
	TraceID   string
	SourceURL string
	ItemCount int
	Outcome   string
	TookMs    float64
	CreatedAt string
}

var (
	ErrInvalidSourceURL   = errors.New("source url cannot be converted to an export address")
	ErrInvalidCredentials = errors.New("invalid id or password")
	ErrConfigValidation   = errors.New("url does not look like a spreadsheet link")
	ErrReloadInProgress   = errors.New("inventory reload already in progress")
)

// FetchError marks a retrieval failure. Callers keep the previously loaded
// inventory when they see one.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }
