package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/deppfellow/books-api/internal/model"
)

// BoltBookRepository is the embedded BookStore. Values are JSON encoded
// books keyed by database.BookKey, so cursor order is id order.
type BoltBookRepository struct {
	db *bolt.DB
}

func NewBoltBookRepository(db *bolt.DB) *BoltBookRepository {
	return &BoltBookRepository{db: db}
}

// bookBucket returns the book bucket, or an error when migrations have not
// created it.
func bookBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(database.BookBucket)
	if bucket == nil {
		return nil, fmt.Errorf("bucket %s missing", database.BookBucket)
	}
	return bucket, nil
}

// Insert checks and writes inside one read-write transaction. bolt allows a
// single writer at a time, so concurrent inserts of one id cannot both pass.
func (r *BoltBookRepository) Insert(ctx context.Context, book model.Book) error {
	if err := ctx.Err(); err != nil {
		return model.NewStorageError("insert book", err)
	}

	value, err := json.Marshal(book)
	if err != nil {
		return model.NewStorageError("insert book", err)
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := bookBucket(tx)
		if err != nil {
			return err
		}
		key := database.BookKey(book.ID)
		if bucket.Get(key) != nil {
			return model.ErrDuplicateBook
		}
		return bucket.Put(key, value)
	})
	if err == model.ErrDuplicateBook {
		return err
	}

	return model.NewStorageError("insert book", err)
}

func (r *BoltBookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStorageError("get book", err)
	}

	var book *model.Book
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket, err := bookBucket(tx)
		if err != nil {
			return err
		}
		raw := bucket.Get(database.BookKey(id))
		if raw == nil {
			return nil
		}
		book = &model.Book{}
		return json.Unmarshal(raw, book)
	})
	if err != nil {
		return nil, model.NewStorageError("get book", err)
	}

	return book, nil
}

func (r *BoltBookRepository) Query(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStorageError("query books", err)
	}

	books := []model.Book{}
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket, err := bookBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, raw []byte) error {
			var book model.Book
			if err := json.Unmarshal(raw, &book); err != nil {
				return err
			}
			if filter.Matches(book) {
				books = append(books, book)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.NewStorageError("query books", err)
	}

	return books, nil
}

func (r *BoltBookRepository) Update(ctx context.Context, id int64, delta model.BookDelta) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStorageError("update book", err)
	}

	var updated model.Book
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := bookBucket(tx)
		if err != nil {
			return err
		}
		key := database.BookKey(id)

		raw := bucket.Get(key)
		if raw == nil {
			return model.ErrBookNotFound
		}

		var current model.Book
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}

		updated = delta.Apply(current)
		value, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
	if err == model.ErrBookNotFound {
		return nil, err
	}
	if err != nil {
		return nil, model.NewStorageError("update book", err)
	}

	return &updated, nil
}
