// Package finance derives revenue and expense entries from stock movements.
package finance

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/woodsbury/decimal128"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	Revenue EntryType = "revenue"
	Expense EntryType = "expense"
)

// Label returns the display name of the entry type.
func (t EntryType) Label() string {
	switch t {
	case Revenue:
		return "Revenue"
	case Expense:
		return "Expense"
	default:
		return string(t)
	}
}

// Entry is one revenue or expense line derived from a stock transaction.
type Entry struct {
	ID            string              `json:"id"`
	BranchID      uint64              `json:"branch_id"`
	ProductType   catalog.ProductType `json:"product_type"`
	ProductName   string              `json:"product_name"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     decimal128.Decimal  `json:"unit_price"`
	Total         decimal128.Decimal  `json:"total_amount"`
	Type          EntryType           `json:"transaction_type"`
	TransactionID string              `json:"source_id"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Store persists ledger entries.
type Store interface {
	// AddEntries stores entries atomically.
	AddEntries(ctx context.Context, entries []Entry) error
	Entries(ctx context.Context) ([]Entry, error)
}

// Catalog resolves the products whose prices feed the ledger.
type Catalog interface {
	Product(ctx context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error)
	ProductsByType(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error)
}

// Money formats an amount with two decimal places.
func Money(d decimal128.Decimal) string {
	return decimal128.Format(d, 'f', 2)
}

// ParseMoney reads an amount. Blank, malformed and non-finite values read
// as zero.
func ParseMoney(s string) decimal128.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return zero()
	}
	d, err := decimal128.Parse(s)
	if err != nil || d.IsNaN() || d.IsInf(0) {
		return zero()
	}
	return d
}

func fromFloat(f float64) decimal128.Decimal {
	return ParseMoney(strconv.FormatFloat(f, 'f', -1, 64))
}

func zero() decimal128.Decimal {
	return decimal128.New(0, 0)
}

func round2(d decimal128.Decimal) decimal128.Decimal {
	return d.Round(2, decimal128.ToNearestAway)
}
