package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-bakery/pkg/inventory"
)

// Record returns the stock level for key or inventory.ErrNotFound.
func (s *Store) Record(_ context.Context, key inventory.Key) (inventory.Record, error) {
	var record inventory.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		var found bool
		var err error
		record, found, err = getRecord(tx, key)
		if err != nil {
			return err
		}
		if !found {
			return inventory.ErrNotFound
		}
		return nil
	})
	return record, err
}

// UpsertRecord stores record under its key.
func (s *Store) UpsertRecord(_ context.Context, record inventory.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putRecord(tx, record)
	})
}

// Records returns every stock level in key order.
func (s *Store) Records(_ context.Context) ([]inventory.Record, error) {
	var records []inventory.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketInventory).ForEach(func(k, v []byte) error {
			var record inventory.Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("boltstore: unmarshal record %s: %w", k, err)
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// ApplyTransaction stores tx and the adjusted record in one update.
func (s *Store) ApplyTransaction(_ context.Context, txn inventory.Transaction, adjust inventory.AdjustFunc) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := txn.Key()
		current, found, err := getRecord(tx, key)
		if err != nil {
			return err
		}
		if !found {
			current = inventory.Record{BranchID: key.BranchID, ProductType: key.ProductType, ProductName: key.ProductName}
		}
		next, err := adjust(current, found)
		if err != nil {
			return err
		}

		data, err := json.Marshal(txn)
		if err != nil {
			return fmt.Errorf("boltstore: marshal transaction: %w", err)
		}
		if err := tx.Bucket(BucketTransactions).Put(transactionKey(txn), data); err != nil {
			return err
		}
		return putRecord(tx, next)
	})
}

// Transactions returns every stock movement in creation order.
func (s *Store) Transactions(_ context.Context) ([]inventory.Transaction, error) {
	var txs []inventory.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketTransactions).ForEach(func(k, v []byte) error {
			var txn inventory.Transaction
			if err := json.Unmarshal(v, &txn); err != nil {
				return fmt.Errorf("boltstore: unmarshal transaction %s: %w", k, err)
			}
			txs = append(txs, txn)
			return nil
		})
	})
	return txs, err
}

// fixed width keeps keys in chronological order
const transactionTimeLayout = "2006-01-02T15:04:05.000000000Z"

func transactionKey(txn inventory.Transaction) []byte {
	return []byte(txn.CreatedAt.UTC().Format(transactionTimeLayout) + "|" + txn.ID)
}

func getRecord(tx *bolt.Tx, key inventory.Key) (inventory.Record, bool, error) {
	data := tx.Bucket(BucketInventory).Get([]byte(key.String()))
	if data == nil {
		return inventory.Record{}, false, nil
	}
	var record inventory.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return inventory.Record{}, false, fmt.Errorf("boltstore: unmarshal record: %w", err)
	}
	return record, true, nil
}

func putRecord(tx *bolt.Tx, record inventory.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("boltstore: marshal record: %w", err)
	}
	return tx.Bucket(BucketInventory).Put([]byte(record.Key().String()), data)
}
