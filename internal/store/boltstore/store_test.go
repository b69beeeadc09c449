package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-bakery/internal/store/storetest"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{Path: filepath.Join(t.TempDir(), "nested", "bakery.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Backend {
		return testStore(t)
	})
}

func TestOpen_CreatesBuckets(t *testing.T) {
	store := testStore(t)

	err := store.DB().View(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{BucketProducts, BucketBranches, BucketInventory, BucketTransactions} {
			assert.NotNil(t, tx.Bucket(name), "bucket %s", name)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestProductKeysOrderByID(t *testing.T) {
	assert.Less(t, string(productKey("bread", 2)), string(productKey("bread", 10)))
}
