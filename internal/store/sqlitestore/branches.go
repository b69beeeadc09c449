package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-bakery/pkg/inventory"
)

type branchRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	City      string `db:"city"`
	Address   string `db:"address"`
	CreatedAt string `db:"created_at"`
}

func (r branchRow) branch() inventory.Branch {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return inventory.Branch{
		ID:        uint64(r.ID),
		Name:      r.Name,
		City:      r.City,
		Address:   r.Address,
		CreatedAt: created,
	}
}

// PutBranch inserts b, or updates it when b.ID is set.
func (s *Store) PutBranch(ctx context.Context, b inventory.Branch) (inventory.Branch, error) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	created := b.CreatedAt.UTC().Format(time.RFC3339Nano)

	if b.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO branches (name, city, address, created_at) VALUES (?, ?, ?, ?)`,
			b.Name, b.City, b.Address, created)
		if err != nil {
			return inventory.Branch{}, fmt.Errorf("sqlitestore: insert branch: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return inventory.Branch{}, fmt.Errorf("sqlitestore: branch id: %w", err)
		}
		b.ID = uint64(id)
		return b, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, city, address, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name    = excluded.name,
			city    = excluded.city,
			address = excluded.address
	`, int64(b.ID), b.Name, b.City, b.Address, created)
	if err != nil {
		return inventory.Branch{}, fmt.Errorf("sqlitestore: put branch: %w", err)
	}
	return b, nil
}

// Branch returns one branch or inventory.ErrNotFound.
func (s *Store) Branch(ctx context.Context, id uint64) (inventory.Branch, error) {
	var row branchRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, city, address, created_at FROM branches WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Branch{}, inventory.ErrNotFound
	}
	if err != nil {
		return inventory.Branch{}, fmt.Errorf("sqlitestore: get branch: %w", err)
	}
	return row.branch(), nil
}

// Branches returns every branch ordered by id.
func (s *Store) Branches(ctx context.Context) ([]inventory.Branch, error) {
	var rows []branchRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, city, address, created_at FROM branches ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlitestore: list branches: %w", err)
	}
	out := make([]inventory.Branch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.branch())
	}
	return out, nil
}
