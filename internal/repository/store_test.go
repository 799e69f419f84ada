package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/deppfellow/books-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

var dune = model.Book{ID: 42, Title: "Dune", Author: "Herbert", Pages: 412, Rating: 4.8, Price: 11.5}

// testBookStore runs the behaviour every BookStore must share. newStore
// must return an empty store each time it is called.
func testBookStore(t *testing.T, newStore func(t *testing.T) BookStore) {
	ctx := context.Background()

	t.Run("insert then get returns the same record", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Insert(ctx, dune))

		got, err := store.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, dune, *got)
	})

	t.Run("get of a missing id returns nil", func(t *testing.T) {
		store := newStore(t)

		got, err := store.GetByID(ctx, 9999)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate insert fails and keeps the original", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Insert(ctx, dune))

		other := dune
		other.Title = "Children of Dune"
		err := store.Insert(ctx, other)
		assert.ErrorIs(t, err, model.ErrDuplicateBook)

		got, err := store.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("negative and zero ids are stored", func(t *testing.T) {
		store := newStore(t)

		for _, id := range []int64{-7, 0} {
			b := dune
			b.ID = id
			require.NoError(t, store.Insert(ctx, b))
		}

		books, err := store.Query(ctx, model.BookFilter{})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, int64(-7), books[0].ID)
		assert.Equal(t, int64(0), books[1].ID)
	})

	t.Run("query filters and orders by id", func(t *testing.T) {
		store := newStore(t)
		for _, b := range []model.Book{
			{ID: 30, Title: "Animal Farm", Author: "George Orwell", Pages: 112, Rating: 4.6, Price: 8.99},
			{ID: 10, Title: "1984", Author: "George Orwell", Pages: 328, Rating: 4.7, Price: 12.95},
			{ID: 20, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Pages: 180, Rating: 4.4, Price: 10.99},
			{ID: 40, Title: "100% Farm_Stories", Author: "Anon", Pages: 50, Rating: 3, Price: 1},
		} {
			require.NoError(t, store.Insert(ctx, b))
		}

		ids := func(books []model.Book) []int64 {
			out := []int64{}
			for _, b := range books {
				out = append(out, b.ID)
			}
			return out
		}

		tests := []struct {
			name   string
			filter model.BookFilter
			want   []int64
		}{
			{"no filter", model.BookFilter{}, []int64{10, 20, 30, 40}},
			{"title is case-insensitive", model.BookFilter{Title: ptr("FARM")}, []int64{30, 40}},
			{"min pages is inclusive", model.BookFilter{MinPages: ptr(180)}, []int64{10, 20}},
			{"terms are a conjunction", model.BookFilter{Title: ptr("farm"), MinPages: ptr(100)}, []int64{30}},
			{"percent is literal", model.BookFilter{Title: ptr("100%")}, []int64{40}},
			{"underscore is literal", model.BookFilter{Title: ptr("m_s")}, []int64{40}},
			{"no match", model.BookFilter{Title: ptr("missing")}, []int64{}},
			{"min pages beyond int32", model.BookFilter{MinPages: ptr(1 << 40)}, []int64{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				books, err := store.Query(ctx, tt.filter)
				require.NoError(t, err)
				require.NotNil(t, books)
				assert.Equal(t, tt.want, ids(books))
			})
		}
	})

	t.Run("update applies only supplied fields", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Insert(ctx, dune))

		got, err := store.Update(ctx, dune.ID, model.BookDelta{Price: ptr(9.99)})
		require.NoError(t, err)
		assert.Equal(t, 9.99, got.Price)
		assert.Equal(t, 4.8, got.Rating)
		assert.Equal(t, "Dune", got.Title)

		got, err = store.Update(ctx, dune.ID, model.BookDelta{Rating: ptr(0.0)})
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Rating)
		assert.Equal(t, 9.99, got.Price)

		stored, err := store.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		assert.Equal(t, *got, *stored)
	})

	t.Run("update of a missing id fails", func(t *testing.T) {
		store := newStore(t)

		got, err := store.Update(ctx, 9999, model.BookDelta{Price: ptr(1.0)})
		assert.ErrorIs(t, err, model.ErrBookNotFound)
		assert.Nil(t, got)

		stored, err := store.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("concurrent inserts of one id admit exactly one", func(t *testing.T) {
		store := newStore(t)

		const workers = 16
		var wg sync.WaitGroup
		results := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- store.Insert(ctx, dune)
			}()
		}
		wg.Wait()
		close(results)

		var ok, duplicates int
		for err := range results {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, model.ErrDuplicateBook):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, duplicates)
	})

	t.Run("concurrent updates do not lose fields", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Insert(ctx, dune))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, dune.ID, model.BookDelta{Price: ptr(1.25)})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, dune.ID, model.BookDelta{Rating: ptr(2.5)})
			assert.NoError(t, err)
		}()
		wg.Wait()

		got, err := store.GetByID(ctx, dune.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.25, got.Price)
		assert.Equal(t, 2.5, got.Rating)
	})
}
