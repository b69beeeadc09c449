// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// Backend is the surface exercised by Run.
type Backend interface {
	inventory.Catalog
	inventory.Branches
	inventory.Records
	inventory.Ledger
	finance.Store

	PutProduct(ctx context.Context, product catalog.Product) error
	Products(ctx context.Context) ([]catalog.Product, error)
	PutBranch(ctx context.Context, b inventory.Branch) (inventory.Branch, error)
	Close() error
}

// Run executes the contract against fresh backends from open.
func Run(t *testing.T, open func(t *testing.T) Backend) {
	t.Helper()

	t.Run("products by type", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		for _, p := range catalog.DefaultProducts() {
			require.NoError(t, s.PutProduct(ctx, p))
		}

		bread, err := s.ProductsByType(ctx, catalog.ProductTypeBread)
		require.NoError(t, err)
		assert.Equal(t, []string{"White Loaf", "Whole Wheat Loaf", "Dabo Roll"}, names(bread))

		none, err := s.ProductsByType(ctx, catalog.ProductType("cake"))
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := s.Products(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(catalog.DefaultProducts()))
	})

	t.Run("product lookup and overwrite", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		flour := catalog.Product{ID: 2, Type: catalog.ProductTypeFlour, Name: "Teff Flour", Brand: "Ethio Grain", CostPerKG: "120.00"}
		require.NoError(t, s.PutProduct(ctx, flour))

		got, err := s.Product(ctx, catalog.ProductTypeFlour, 2)
		require.NoError(t, err)
		assert.Equal(t, flour, got)

		flour.CostPerKG = "125.50"
		require.NoError(t, s.PutProduct(ctx, flour))
		got, err = s.Product(ctx, catalog.ProductTypeFlour, 2)
		require.NoError(t, err)
		assert.Equal(t, "125.50", got.CostPerKG)

		_, err = s.Product(ctx, catalog.ProductTypeYeast, 2)
		assert.True(t, errors.Is(err, inventory.ErrNotFound), "got %v", err)
	})

	t.Run("branches", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		bole, err := s.PutBranch(ctx, inventory.Branch{Name: "Bole", City: "Addis Ababa"})
		require.NoError(t, err)
		assert.NotZero(t, bole.ID)
		piassa, err := s.PutBranch(ctx, inventory.Branch{Name: "Piassa", City: "Addis Ababa"})
		require.NoError(t, err)
		assert.NotEqual(t, bole.ID, piassa.ID)

		got, err := s.Branch(ctx, piassa.ID)
		require.NoError(t, err)
		assert.Equal(t, "Piassa", got.Name)
		assert.Equal(t, "Piassa (Addis Ababa)", got.String())

		list, err := s.Branches(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = s.Branch(ctx, 999)
		assert.True(t, errors.Is(err, inventory.ErrNotFound), "got %v", err)
	})

	t.Run("records upsert by key", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		branch, err := s.PutBranch(ctx, inventory.Branch{Name: "Bole"})
		require.NoError(t, err)

		ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
		record := inventory.Record{
			BranchID:    branch.ID,
			ProductType: catalog.ProductTypeFlour,
			ProductID:   1,
			ProductName: "Wheat Flour",
			Quantity:    12.5,
			LastUpdated: ts,
		}
		require.NoError(t, s.UpsertRecord(ctx, record))

		record.Quantity = 20
		require.NoError(t, s.UpsertRecord(ctx, record))

		got, err := s.Record(ctx, record.Key())
		require.NoError(t, err)
		assert.Equal(t, 20.0, got.Quantity)
		assert.True(t, got.LastUpdated.Equal(ts))

		list, err := s.Records(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = s.Record(ctx, inventory.Key{BranchID: branch.ID, ProductType: catalog.ProductTypeYeast, ProductName: "Wheat Flour"})
		assert.True(t, errors.Is(err, inventory.ErrNotFound), "got %v", err)
	})

	t.Run("apply transaction", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		branch, err := s.PutBranch(ctx, inventory.Branch{Name: "Bole"})
		require.NoError(t, err)

		tx := inventory.Transaction{
			ID:          "tx-1",
			BranchID:    branch.ID,
			ProductType: catalog.ProductTypeBread,
			ProductID:   1,
			ProductName: "White Loaf",
			Quantity:    40,
			Type:        inventory.StockIn,
			CreatedAt:   time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
		}
		var sawFound bool
		err = s.ApplyTransaction(ctx, tx, func(current inventory.Record, found bool) (inventory.Record, error) {
			sawFound = found
			assert.Equal(t, tx.Key(), current.Key())
			current.ProductID = tx.ProductID
			next := tx.Apply(current)
			next.LastUpdated = tx.CreatedAt
			return next, nil
		})
		require.NoError(t, err)
		assert.False(t, sawFound)

		got, err := s.Record(ctx, tx.Key())
		require.NoError(t, err)
		assert.Equal(t, 40.0, got.Quantity)

		txs, err := s.Transactions(ctx)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "tx-1", txs[0].ID)
		assert.Equal(t, inventory.StockIn, txs[0].Type)
		assert.True(t, txs[0].CreatedAt.Equal(tx.CreatedAt))
	})

	t.Run("rejected adjustment writes nothing", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		branch, err := s.PutBranch(ctx, inventory.Branch{Name: "Bole"})
		require.NoError(t, err)

		boom := errors.New("rejected")
		tx := inventory.Transaction{
			ID:          "tx-2",
			BranchID:    branch.ID,
			ProductType: catalog.ProductTypeYeast,
			ProductName: "Instant Dry Yeast",
			Quantity:    3,
			Type:        inventory.StockOut,
			CreatedAt:   time.Now().UTC(),
		}
		err = s.ApplyTransaction(ctx, tx, func(inventory.Record, bool) (inventory.Record, error) {
			return inventory.Record{}, boom
		})
		assert.True(t, errors.Is(err, boom), "got %v", err)

		txs, err := s.Transactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, txs)
		_, err = s.Record(ctx, tx.Key())
		assert.True(t, errors.Is(err, inventory.ErrNotFound), "got %v", err)
	})

	t.Run("ledger entries", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		branch, err := s.PutBranch(ctx, inventory.Branch{Name: "Bole"})
		require.NoError(t, err)

		early := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
		late := early.Add(time.Hour)
		require.NoError(t, s.AddEntries(ctx, []finance.Entry{
			{ID: "e-2", BranchID: branch.ID, ProductType: catalog.ProductTypeBread, ProductName: "White Loaf", Quantity: 3,
				UnitPrice: finance.ParseMoney("10.00"), Total: finance.ParseMoney("30.00"), Type: finance.Revenue, TransactionID: "tx-2", CreatedAt: late},
			{ID: "e-1", BranchID: branch.ID, ProductType: catalog.ProductTypeFlour, ProductName: "Teff Flour", Quantity: 10,
				UnitPrice: finance.ParseMoney("120.00"), Total: finance.ParseMoney("1200.00"), Type: finance.Expense, TransactionID: "tx-1", CreatedAt: early},
		}))

		entries, err := s.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "e-1", entries[0].ID)
		assert.Equal(t, finance.Expense, entries[0].Type)
		assert.Equal(t, "120.00", finance.Money(entries[0].UnitPrice))
		assert.Equal(t, "1200.00", finance.Money(entries[0].Total))
		assert.Equal(t, "tx-1", entries[0].TransactionID)
		assert.True(t, entries[0].CreatedAt.Equal(early))
		assert.Equal(t, "e-2", entries[1].ID)
		assert.Equal(t, "30.00", finance.Money(entries[1].Total))
		assert.Equal(t, 3, entries[1].Quantity)
	})
}

func names(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
