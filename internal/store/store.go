// Package store selects and seeds the persistence backend.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-bakery/internal/store/boltstore"
	"github.com/goliatone/go-bakery/internal/store/memstore"
	"github.com/goliatone/go-bakery/internal/store/sqlitestore"
	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// ErrNotFound is returned by every backend for missing entities.
var ErrNotFound = inventory.ErrNotFound

// Store is the full persistence surface of the admin.
type Store interface {
	inventory.Catalog
	inventory.Branches
	inventory.Records
	inventory.Ledger
	finance.Store

	PutProduct(ctx context.Context, product catalog.Product) error
	Products(ctx context.Context) ([]catalog.Product, error)
	// PutBranch stores b, assigning an id when b.ID is zero.
	PutBranch(ctx context.Context, b inventory.Branch) (inventory.Branch, error)
	Close() error
}

const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config selects a backend.
type Config struct {
	Driver  string        `yaml:"driver"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

var (
	_ Store = (*boltstore.Store)(nil)
	_ Store = (*sqlitestore.Store)(nil)
	_ Store = (*memstore.Store)(nil)
)

// Open opens the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverBolt:
		opts := boltstore.DefaultOptions()
		if cfg.Path != "" {
			opts.Path = cfg.Path
		}
		if cfg.Timeout > 0 {
			opts.Timeout = cfg.Timeout
		}
		return boltstore.Open(opts)
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = "bakery.sqlite"
		}
		return sqlitestore.Open(ctx, path)
	case DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// DefaultBranches is the starter branch list loaded by Seed.
func DefaultBranches() []inventory.Branch {
	return []inventory.Branch{
		{Name: "Bole", City: "Addis Ababa", Address: "Bole Road"},
		{Name: "Piassa", City: "Addis Ababa", Address: "Churchill Avenue"},
		{Name: "Hawassa Main", City: "Hawassa"},
	}
}

// Seed loads products and branches. Products overwrite entries with the same
// type and id; branches are added only when no branch of the same name
// exists.
func Seed(ctx context.Context, s Store, products []catalog.Product, branches []inventory.Branch) error {
	for _, product := range products {
		if err := s.PutProduct(ctx, product); err != nil {
			return fmt.Errorf("store: seed product %s/%d: %w", product.Type, product.ID, err)
		}
	}

	existing, err := s.Branches(ctx)
	if err != nil {
		return fmt.Errorf("store: seed branches: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, b := range existing {
		names[b.Name] = true
	}
	for _, b := range branches {
		if names[b.Name] {
			continue
		}
		b.ID = 0
		if _, err := s.PutBranch(ctx, b); err != nil {
			return fmt.Errorf("store: seed branch %s: %w", b.Name, err)
		}
		names[b.Name] = true
	}
	return nil
}
