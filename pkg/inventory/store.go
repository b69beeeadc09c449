package inventory

import (
	"context"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Catalog resolves products.
type Catalog interface {
	Product(ctx context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error)
	ProductsByType(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error)
}

// Branches resolves branches.
type Branches interface {
	Branch(ctx context.Context, id uint64) (Branch, error)
	Branches(ctx context.Context) ([]Branch, error)
}

// Records persists stock levels.
type Records interface {
	Record(ctx context.Context, key Key) (Record, error)
	UpsertRecord(ctx context.Context, record Record) error
	Records(ctx context.Context) ([]Record, error)
}

// AdjustFunc computes the new record for a stock movement. found is false
// when no record exists yet; current then carries only the key fields.
type AdjustFunc func(current Record, found bool) (Record, error)

// Ledger persists stock movements.
type Ledger interface {
	// ApplyTransaction stores tx and the record returned by adjust
	// atomically. An error from adjust aborts both writes.
	ApplyTransaction(ctx context.Context, tx Transaction, adjust AdjustFunc) error
	Transactions(ctx context.Context) ([]Transaction, error)
}
