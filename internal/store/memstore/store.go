// Package memstore keeps the admin data in memory. It backs tests and the
// "memory" driver.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

type productKey struct {
	productType catalog.ProductType
	id          uint64
}

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu           sync.RWMutex
	products     map[productKey]catalog.Product
	branches     map[uint64]inventory.Branch
	nextBranch   uint64
	records      map[inventory.Key]inventory.Record
	transactions []inventory.Transaction
	entries      []finance.Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{
		products: make(map[productKey]catalog.Product),
		branches: make(map[uint64]inventory.Branch),
		records:  make(map[inventory.Key]inventory.Record),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) PutProduct(_ context.Context, product catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productKey{product.Type, product.ID}] = product
	return nil
}

func (s *Store) Product(_ context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[productKey{productType, id}]
	if !ok {
		return catalog.Product{}, inventory.ErrNotFound
	}
	return product, nil
}

func (s *Store) ProductsByType(_ context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Product
	for key, product := range s.products {
		if key.productType == productType {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Products(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) PutBranch(_ context.Context, b inventory.Branch) (inventory.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		s.nextBranch++
		b.ID = s.nextBranch
	} else if b.ID > s.nextBranch {
		s.nextBranch = b.ID
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.branches[b.ID] = b
	return b, nil
}

func (s *Store) Branch(_ context.Context, id uint64) (inventory.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[id]
	if !ok {
		return inventory.Branch{}, inventory.ErrNotFound
	}
	return b, nil
}

func (s *Store) Branches(_ context.Context) ([]inventory.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]inventory.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Record(_ context.Context, key inventory.Key) (inventory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return inventory.Record{}, inventory.ErrNotFound
	}
	return record, nil
}

func (s *Store) UpsertRecord(_ context.Context, record inventory.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Key()] = record
	return nil
}

func (s *Store) Records(_ context.Context) ([]inventory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]inventory.Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, nil
}

func (s *Store) ApplyTransaction(_ context.Context, tx inventory.Transaction, adjust inventory.AdjustFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tx.Key()
	current, found := s.records[key]
	if !found {
		current = inventory.Record{BranchID: key.BranchID, ProductType: key.ProductType, ProductName: key.ProductName}
	}
	next, err := adjust(current, found)
	if err != nil {
		return err
	}
	s.transactions = append(s.transactions, tx)
	s.records[next.Key()] = next
	return nil
}

func (s *Store) Transactions(_ context.Context) ([]inventory.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]inventory.Transaction(nil), s.transactions...), nil
}

func (s *Store) AddEntries(_ context.Context, entries []finance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) Entries(_ context.Context) ([]finance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]finance.Entry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
