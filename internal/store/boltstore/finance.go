package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/finance"
)

type entryRecord struct {
	ID            string              `json:"id"`
	BranchID      uint64              `json:"branch_id"`
	ProductType   catalog.ProductType `json:"product_type"`
	ProductName   string              `json:"product_name"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     string              `json:"unit_price"`
	Total         string              `json:"total_amount"`
	Type          finance.EntryType   `json:"transaction_type"`
	TransactionID string              `json:"source_id"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toEntryRecord(e finance.Entry) entryRecord {
	return entryRecord{
		ID:            e.ID,
		BranchID:      e.BranchID,
		ProductType:   e.ProductType,
		ProductName:   e.ProductName,
		Quantity:      e.Quantity,
		UnitPrice:     finance.Money(e.UnitPrice),
		Total:         finance.Money(e.Total),
		Type:          e.Type,
		TransactionID: e.TransactionID,
		CreatedAt:     e.CreatedAt,
	}
}

func (r entryRecord) entry() finance.Entry {
	return finance.Entry{
		ID:            r.ID,
		BranchID:      r.BranchID,
		ProductType:   r.ProductType,
		ProductName:   r.ProductName,
		Quantity:      r.Quantity,
		UnitPrice:     finance.ParseMoney(r.UnitPrice),
		Total:         finance.ParseMoney(r.Total),
		Type:          r.Type,
		TransactionID: r.TransactionID,
		CreatedAt:     r.CreatedAt,
	}
}

// AddEntries stores entries in one bolt transaction.
func (s *Store) AddEntries(_ context.Context, entries []finance.Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketFinance)
		for _, e := range entries {
			data, err := json.Marshal(toEntryRecord(e))
			if err != nil {
				return fmt.Errorf("boltstore: marshal entry: %w", err)
			}
			key := e.CreatedAt.UTC().Format(transactionTimeLayout) + "|" + e.ID
			if err := bucket.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Entries returns every ledger entry in creation order.
func (s *Store) Entries(_ context.Context) ([]finance.Entry, error) {
	var entries []finance.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketFinance).ForEach(func(k, v []byte) error {
			var r entryRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("boltstore: unmarshal entry %s: %w", k, err)
			}
			entries = append(entries, r.entry())
			return nil
		})
	})
	return entries, err
}
