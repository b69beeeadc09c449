package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

func productKey(productType catalog.ProductType, id uint64) []byte {
	return []byte(fmt.Sprintf("%s/%020d", productType, id))
}

// PutProduct stores product, replacing an entry with the same type and id.
func (s *Store) PutProduct(_ context.Context, product catalog.Product) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("boltstore: marshal product: %w", err)
		}
		return tx.Bucket(BucketProducts).Put(productKey(product.Type, product.ID), data)
	})
}

// Product returns one product or inventory.ErrNotFound.
func (s *Store) Product(_ context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error) {
	var product catalog.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketProducts).Get(productKey(productType, id))
		if data == nil {
			return inventory.ErrNotFound
		}
		return json.Unmarshal(data, &product)
	})
	return product, err
}

// ProductsByType returns the products of one type ordered by id.
func (s *Store) ProductsByType(_ context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
	var products []catalog.Product
	prefix := []byte(string(productType) + "/")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(BucketProducts).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var product catalog.Product
			if err := json.Unmarshal(v, &product); err != nil {
				return fmt.Errorf("boltstore: unmarshal product %s: %w", k, err)
			}
			products = append(products, product)
		}
		return nil
	})
	return products, err
}

// Products returns the whole catalog ordered by type and id.
func (s *Store) Products(_ context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketProducts).ForEach(func(k, v []byte) error {
			var product catalog.Product
			if err := json.Unmarshal(v, &product); err != nil {
				return fmt.Errorf("boltstore: unmarshal product %s: %w", k, err)
			}
			products = append(products, product)
			return nil
		})
	})
	return products, err
}
