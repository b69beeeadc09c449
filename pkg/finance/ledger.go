package finance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/woodsbury/decimal128"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// Ledger turns stock transactions into revenue and expense entries.
type Ledger struct {
	catalog Catalog
	store   Store
	newID   func() string
	logger  zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// WithLogger sets the ledger logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedger wires a ledger over cat and store.
func NewLedger(cat Catalog, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		catalog: cat,
		store:   store,
		newID:   uuid.NewString,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Postings computes the entries tx produces without storing them.
//
// A stock-out of bread or injera yields a revenue entry at the selling
// price and an expense entry at the per-unit production cost: water plus
// electricity plus the flour, yeast and enhancer weights priced at the
// first listed product of each raw material. A stock-in of flour, yeast or
// enhancer yields one expense entry at the product cost per kg. Other
// movements yield nothing.
func (l *Ledger) Postings(ctx context.Context, tx inventory.Transaction) ([]Entry, error) {
	switch {
	case tx.Type == inventory.StockOut && tx.ProductType.Baked():
		return l.salePostings(ctx, tx)
	case tx.Type == inventory.StockIn && tx.ProductType.Ingredient():
		return l.purchasePostings(ctx, tx)
	default:
		return nil, nil
	}
}

// Post computes and stores the entries for tx.
func (l *Ledger) Post(ctx context.Context, tx inventory.Transaction) error {
	entries, err := l.Postings(ctx, tx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := l.store.AddEntries(ctx, entries); err != nil {
		return fmt.Errorf("finance: store entries: %w", err)
	}
	for _, e := range entries {
		l.logger.Info().
			Str("id", e.ID).
			Str("type", string(e.Type)).
			Str("source_id", e.TransactionID).
			Str("total", Money(e.Total)).
			Msg("ledger entry posted")
	}
	return nil
}

func (l *Ledger) salePostings(ctx context.Context, tx inventory.Transaction) ([]Entry, error) {
	product, err := l.product(ctx, tx.ProductType, tx.ProductID)
	if err != nil {
		return nil, err
	}
	qty := decimal128.FromInt64(int64(tx.Quantity))

	price := ParseMoney(product.SellingPrice)
	perUnit := ParseMoney(product.WaterCost).Add(ParseMoney(product.ElectricityCost))
	for _, part := range []struct {
		kg  float64
		raw catalog.ProductType
	}{
		{product.FlourKG, catalog.ProductTypeFlour},
		{product.YeastKG, catalog.ProductTypeYeast},
		{product.EnhancerKG, catalog.ProductTypeEnhancer},
	} {
		if part.kg == 0 {
			continue
		}
		cost, err := l.firstCost(ctx, part.raw)
		if err != nil {
			return nil, err
		}
		perUnit = perUnit.Add(fromFloat(part.kg).Mul(cost))
	}

	return []Entry{
		l.entry(tx, Revenue, price, price.Mul(qty)),
		l.entry(tx, Expense, perUnit, perUnit.Mul(qty)),
	}, nil
}

func (l *Ledger) purchasePostings(ctx context.Context, tx inventory.Transaction) ([]Entry, error) {
	product, err := l.product(ctx, tx.ProductType, tx.ProductID)
	if err != nil {
		return nil, err
	}
	cost := ParseMoney(product.CostPerKG)
	return []Entry{
		l.entry(tx, Expense, cost, cost.Mul(decimal128.FromInt64(int64(tx.Quantity)))),
	}, nil
}

// product resolves the transacted product. A product removed from the
// catalog prices at zero.
func (l *Ledger) product(ctx context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error) {
	product, err := l.catalog.Product(ctx, productType, id)
	if errors.Is(err, inventory.ErrNotFound) {
		return catalog.Product{}, nil
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("finance: load %s %d: %w", productType, id, err)
	}
	return product, nil
}

func (l *Ledger) firstCost(ctx context.Context, productType catalog.ProductType) (decimal128.Decimal, error) {
	products, err := l.catalog.ProductsByType(ctx, productType)
	if err != nil {
		return zero(), fmt.Errorf("finance: load %s prices: %w", productType, err)
	}
	if len(products) == 0 {
		return zero(), nil
	}
	return ParseMoney(products[0].CostPerKG), nil
}

func (l *Ledger) entry(tx inventory.Transaction, typ EntryType, unit, total decimal128.Decimal) Entry {
	return Entry{
		ID:            l.newID(),
		BranchID:      tx.BranchID,
		ProductType:   tx.ProductType,
		ProductName:   tx.ProductName,
		Quantity:      tx.Quantity,
		UnitPrice:     round2(unit),
		Total:         round2(total),
		Type:          typ,
		TransactionID: tx.ID,
		CreatedAt:     tx.CreatedAt,
	}
}

// Filter narrows the entries returned by List. Zero fields match all.
type Filter struct {
	BranchID uint64
	Since    time.Time
	Until    time.Time
}

func (f Filter) match(e Entry) bool {
	if f.BranchID != 0 && e.BranchID != f.BranchID {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// List returns the entries matching filter, newest first.
func (l *Ledger) List(ctx context.Context, filter Filter) ([]Entry, error) {
	all, err := l.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("finance: list entries: %w", err)
	}
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if filter.match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		// revenue before expense for the same movement
		return out[i].Type > out[j].Type
	})
	return out, nil
}

// Summary totals a set of entries.
type Summary struct {
	Revenue decimal128.Decimal
	Expense decimal128.Decimal
	Net     decimal128.Decimal
}

// Summarize totals revenue and expense and their difference.
func Summarize(entries []Entry) Summary {
	s := Summary{Revenue: zero(), Expense: zero()}
	for _, e := range entries {
		switch e.Type {
		case Revenue:
			s.Revenue = s.Revenue.Add(e.Total)
		case Expense:
			s.Expense = s.Expense.Add(e.Total)
		}
	}
	s.Net = s.Revenue.Sub(s.Expense)
	return s
}
