// Package inventory records per-branch stock levels and stock movements.
package inventory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Branch is a bakery location.
type Branch struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// String renders the branch the way it appears in messages.
func (b Branch) String() string {
	if b.City == "" {
		return b.Name
	}
	return fmt.Sprintf("%s (%s)", b.Name, b.City)
}

// Key identifies an inventory record.
type Key struct {
	BranchID    uint64              `json:"branch_id"`
	ProductType catalog.ProductType `json:"product_type"`
	ProductName string              `json:"product_name"`
}

// String encodes the key for stores that need a flat identifier.
func (k Key) String() string {
	return strconv.FormatUint(k.BranchID, 10) + "/" + string(k.ProductType) + "/" + k.ProductName
}

// Record is the stock level of one product at one branch.
type Record struct {
	BranchID    uint64              `json:"branch_id"`
	ProductType catalog.ProductType `json:"product_type"`
	ProductID   uint64              `json:"product_id"`
	ProductName string              `json:"product_name"`
	Quantity    float64             `json:"quantity"`
	LastUpdated time.Time           `json:"last_updated"`
}

// Key returns the identity of the record.
func (r Record) Key() Key {
	return Key{BranchID: r.BranchID, ProductType: r.ProductType, ProductName: r.ProductName}
}

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	StockIn  TransactionType = "in"
	StockOut TransactionType = "out"
)

// Label returns the display name of the transaction type.
func (t TransactionType) Label() string {
	switch t {
	case StockIn:
		return "Stock In"
	case StockOut:
		return "Stock Out"
	default:
		return string(t)
	}
}

// TransactionTypes lists the supported directions in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{StockIn, StockOut}
}

// Transaction is one stock movement.
type Transaction struct {
	ID          string              `json:"id"`
	BranchID    uint64              `json:"branch_id"`
	ProductType catalog.ProductType `json:"product_type"`
	ProductID   uint64              `json:"product_id"`
	ProductName string              `json:"product_name"`
	Quantity    int                 `json:"quantity"`
	Type        TransactionType     `json:"transaction_type"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Key returns the inventory record the transaction adjusts.
func (t Transaction) Key() Key {
	return Key{BranchID: t.BranchID, ProductType: t.ProductType, ProductName: t.ProductName}
}

// Apply adjusts record by the transaction quantity.
func (t Transaction) Apply(record Record) Record {
	switch t.Type {
	case StockIn:
		record.Quantity += float64(t.Quantity)
	case StockOut:
		record.Quantity -= float64(t.Quantity)
	}
	return record
}

// FormatQuantity renders a stock level without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
