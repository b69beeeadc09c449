package sqlitestore

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/finance"
)

// Amounts are stored as TEXT so two-decimal values survive unchanged.
type entryRow struct {
	ID              string `db:"id"`
	BranchID        int64  `db:"branch_id"`
	ProductType     string `db:"product_type"`
	ProductName     string `db:"product_name"`
	Quantity        int    `db:"quantity"`
	UnitPrice       string `db:"unit_price"`
	TotalAmount     string `db:"total_amount"`
	TransactionType string `db:"transaction_type"`
	SourceID        string `db:"source_id"`
	CreatedAt       string `db:"created_at"`
}

func (r entryRow) entry() finance.Entry {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return finance.Entry{
		ID:            r.ID,
		BranchID:      uint64(r.BranchID),
		ProductType:   catalog.ProductType(r.ProductType),
		ProductName:   r.ProductName,
		Quantity:      r.Quantity,
		UnitPrice:     finance.ParseMoney(r.UnitPrice),
		Total:         finance.ParseMoney(r.TotalAmount),
		Type:          finance.EntryType(r.TransactionType),
		TransactionID: r.SourceID,
		CreatedAt:     created,
	}
}

const entryColumns = `id, branch_id, product_type, product_name, quantity, unit_price, total_amount, transaction_type, source_id, created_at`

// AddEntries inserts entries in one SQL transaction.
func (s *Store) AddEntries(ctx context.Context, entries []finance.Entry) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, e := range entries {
		_, err = tx.ExecContext(ctx, `INSERT INTO finance_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, int64(e.BranchID), string(e.ProductType), e.ProductName, e.Quantity,
			finance.Money(e.UnitPrice), finance.Money(e.Total), string(e.Type), e.TransactionID,
			e.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("sqlitestore: insert entry %s: %w", e.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return nil
}

// Entries returns every ledger entry in creation order.
func (s *Store) Entries(ctx context.Context) ([]finance.Entry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+entryColumns+` FROM finance_entries ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("sqlitestore: list entries: %w", err)
	}
	out := make([]finance.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entry())
	}
	return out, nil
}
