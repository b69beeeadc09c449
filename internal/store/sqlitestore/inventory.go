package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

type recordRow struct {
	BranchID    int64   `db:"branch_id"`
	ProductType string  `db:"product_type"`
	ProductName string  `db:"product_name"`
	ProductID   int64   `db:"product_id"`
	Quantity    float64 `db:"quantity"`
	LastUpdated string  `db:"last_updated"`
}

func (r recordRow) record() inventory.Record {
	updated, _ := time.Parse(time.RFC3339Nano, r.LastUpdated)
	return inventory.Record{
		BranchID:    uint64(r.BranchID),
		ProductType: catalog.ProductType(r.ProductType),
		ProductID:   uint64(r.ProductID),
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		LastUpdated: updated,
	}
}

type transactionRow struct {
	ID              string `db:"id"`
	BranchID        int64  `db:"branch_id"`
	ProductType     string `db:"product_type"`
	ProductName     string `db:"product_name"`
	ProductID       int64  `db:"product_id"`
	Quantity        int    `db:"quantity"`
	TransactionType string `db:"transaction_type"`
	CreatedAt       string `db:"created_at"`
}

func (r transactionRow) transaction() inventory.Transaction {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return inventory.Transaction{
		ID:          r.ID,
		BranchID:    uint64(r.BranchID),
		ProductType: catalog.ProductType(r.ProductType),
		ProductID:   uint64(r.ProductID),
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		Type:        inventory.TransactionType(r.TransactionType),
		CreatedAt:   created,
	}
}

const recordColumns = `branch_id, product_type, product_name, product_id, quantity, last_updated`

const upsertRecord = `
	INSERT INTO inventory (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(branch_id, product_type, product_name) DO UPDATE SET
		product_id   = excluded.product_id,
		quantity     = excluded.quantity,
		last_updated = excluded.last_updated
`

const selectRecord = `SELECT ` + recordColumns + ` FROM inventory
	WHERE branch_id = ? AND product_type = ? AND product_name = ?`

func recordArgs(r inventory.Record) []any {
	return []any{int64(r.BranchID), string(r.ProductType), r.ProductName, int64(r.ProductID), r.Quantity,
		r.LastUpdated.UTC().Format(time.RFC3339Nano)}
}

func keyArgs(k inventory.Key) []any {
	return []any{int64(k.BranchID), string(k.ProductType), k.ProductName}
}

// Record returns the stock level for key or inventory.ErrNotFound.
func (s *Store) Record(ctx context.Context, key inventory.Key) (inventory.Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, selectRecord, keyArgs(key)...)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Record{}, inventory.ErrNotFound
	}
	if err != nil {
		return inventory.Record{}, fmt.Errorf("sqlitestore: get record: %w", err)
	}
	return row.record(), nil
}

// UpsertRecord stores record under its key.
func (s *Store) UpsertRecord(ctx context.Context, record inventory.Record) error {
	if _, err := s.db.ExecContext(ctx, upsertRecord, recordArgs(record)...); err != nil {
		return fmt.Errorf("sqlitestore: upsert record: %w", err)
	}
	return nil
}

// Records returns every stock level in key order.
func (s *Store) Records(ctx context.Context) ([]inventory.Record, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+recordColumns+` FROM inventory ORDER BY branch_id, product_type, product_name`); err != nil {
		return nil, fmt.Errorf("sqlitestore: list records: %w", err)
	}
	out := make([]inventory.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

// ApplyTransaction stores txn and the adjusted record in one SQL transaction.
func (s *Store) ApplyTransaction(ctx context.Context, txn inventory.Transaction, adjust inventory.AdjustFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, found, err := lockedRecord(ctx, tx, txn.Key())
	if err != nil {
		return err
	}
	next, err := adjust(current, found)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_transactions
		(id, branch_id, product_type, product_name, product_id, quantity, transaction_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, int64(txn.BranchID), string(txn.ProductType), txn.ProductName, int64(txn.ProductID),
		txn.Quantity, string(txn.Type), txn.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlitestore: insert transaction: %w", err)
	}
	if _, err = tx.ExecContext(ctx, upsertRecord, recordArgs(next)...); err != nil {
		return fmt.Errorf("sqlitestore: upsert record: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return nil
}

func lockedRecord(ctx context.Context, tx *sqlx.Tx, key inventory.Key) (inventory.Record, bool, error) {
	var row recordRow
	err := tx.GetContext(ctx, &row, selectRecord, keyArgs(key)...)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Record{BranchID: key.BranchID, ProductType: key.ProductType, ProductName: key.ProductName}, false, nil
	}
	if err != nil {
		return inventory.Record{}, false, fmt.Errorf("sqlitestore: get record: %w", err)
	}
	return row.record(), true, nil
}

// Transactions returns every stock movement in creation order.
func (s *Store) Transactions(ctx context.Context) ([]inventory.Transaction, error) {
	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, branch_id, product_type, product_name, product_id, quantity, transaction_type, created_at
		FROM stock_transactions ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("sqlitestore: list transactions: %w", err)
	}
	out := make([]inventory.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.transaction())
	}
	return out, nil
}
