// Package sqlitestore provides the SQLite-backed store.
package sqlitestore

import (
	"context"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_type     TEXT    NOT NULL,
	id               INTEGER NOT NULL,
	name             TEXT    NOT NULL,
	description      TEXT    NOT NULL DEFAULT '',
	flour_kg         REAL    NOT NULL DEFAULT 0,
	yeast_kg         REAL    NOT NULL DEFAULT 0,
	enhancer_kg      REAL    NOT NULL DEFAULT 0,
	water_cost       TEXT    NOT NULL DEFAULT '',
	electricity_cost TEXT    NOT NULL DEFAULT '',
	selling_price    TEXT    NOT NULL DEFAULT '',
	brand            TEXT    NOT NULL DEFAULT '',
	cost_per_kg      TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (product_type, id)
);

CREATE TABLE IF NOT EXISTS branches (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory (
	branch_id    INTEGER NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
	product_type TEXT    NOT NULL,
	product_name TEXT    NOT NULL,
	product_id   INTEGER NOT NULL DEFAULT 0,
	quantity     REAL    NOT NULL DEFAULT 0,
	last_updated TEXT    NOT NULL,
	PRIMARY KEY (branch_id, product_type, product_name)
);

CREATE TABLE IF NOT EXISTS stock_transactions (
	id               TEXT    PRIMARY KEY,
	branch_id        INTEGER NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
	product_type     TEXT    NOT NULL,
	product_name     TEXT    NOT NULL,
	product_id       INTEGER NOT NULL DEFAULT 0,
	quantity         INTEGER NOT NULL,
	transaction_type TEXT    NOT NULL,
	created_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_transactions_created ON stock_transactions(created_at);

CREATE TABLE IF NOT EXISTS finance_entries (
	id               TEXT    PRIMARY KEY,
	branch_id        INTEGER NOT NULL REFERENCES branches(id) ON DELETE CASCADE,
	product_type     TEXT    NOT NULL,
	product_name     TEXT    NOT NULL DEFAULT '',
	quantity         INTEGER NOT NULL DEFAULT 0,
	unit_price       TEXT    NOT NULL,
	total_amount     TEXT    NOT NULL,
	transaction_type TEXT    NOT NULL,
	source_id        TEXT    NOT NULL DEFAULT '',
	created_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_finance_entries_created ON finance_entries(created_at);
`

// Store implements the admin store on SQLite.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path through the otelsql driver
// wrapper and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := otelsql.Open("sqlite", dsn, otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	s := New(sqlx.NewDb(db, "sqlite"))
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The schema must already be applied or
// be applied with Migrate.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlitestore: apply schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
