package repository

import (
	"context"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/deppfellow/books-api/internal/model"
	"github.com/deppfellow/books-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltBookRepository(t *testing.T) {
	testBookStore(t, func(t *testing.T) BookStore {
		return NewBoltBookRepository(testutil.NewServer(t).DB.Bolt)
	})
}

func TestBoltBookRepository_CancelledContext(t *testing.T) {
	store := NewBoltBookRepository(testutil.NewServer(t).DB.Bolt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Insert(ctx, dune)

	var storageErr *model.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "insert book", storageErr.Op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoltBookRepository_MissingBucket(t *testing.T) {
	db := testutil.NewServer(t).DB.Bolt
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket(database.BookBucket)
	}))
	store := NewBoltBookRepository(db)
	ctx := context.Background()

	assertStorageError := func(t *testing.T, op string, err error) {
		t.Helper()
		var storageErr *model.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, op, storageErr.Op)
		assert.Contains(t, err.Error(), "bucket book missing")
	}

	assertStorageError(t, "insert book", store.Insert(ctx, dune))

	_, err := store.GetByID(ctx, dune.ID)
	assertStorageError(t, "get book", err)

	_, err = store.Query(ctx, model.BookFilter{})
	assertStorageError(t, "query books", err)

	_, err = store.Update(ctx, dune.ID, model.BookDelta{Price: ptr(1.0)})
	assertStorageError(t, "update book", err)
}

func TestNewRepositories_PicksBolt(t *testing.T) {
	repos := NewRepositories(testutil.NewServer(t))

	assert.IsType(t, &BoltBookRepository{}, repos.Book)
}
