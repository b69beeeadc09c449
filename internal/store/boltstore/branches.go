package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-bakery/pkg/inventory"
)

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// PutBranch stores b. A zero id takes the bucket's next sequence.
func (s *Store) PutBranch(_ context.Context, b inventory.Branch) (inventory.Branch, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketBranches)
		if b.ID == 0 {
			id, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("boltstore: next branch id: %w", err)
			}
			b.ID = id
		} else if b.ID > bucket.Sequence() {
			if err := bucket.SetSequence(b.ID); err != nil {
				return fmt.Errorf("boltstore: bump branch sequence: %w", err)
			}
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("boltstore: marshal branch: %w", err)
		}
		return bucket.Put(itob(b.ID), data)
	})
	if err != nil {
		return inventory.Branch{}, err
	}
	return b, nil
}

// Branch returns one branch or inventory.ErrNotFound.
func (s *Store) Branch(_ context.Context, id uint64) (inventory.Branch, error) {
	var b inventory.Branch
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketBranches).Get(itob(id))
		if data == nil {
			return inventory.ErrNotFound
		}
		return json.Unmarshal(data, &b)
	})
	return b, err
}

// Branches returns every branch ordered by id.
func (s *Store) Branches(_ context.Context) ([]inventory.Branch, error) {
	var branches []inventory.Branch
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketBranches).ForEach(func(k, v []byte) error {
			var b inventory.Branch
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("boltstore: unmarshal branch: %w", err)
			}
			branches = append(branches, b)
			return nil
		})
	})
	return branches, err
}
