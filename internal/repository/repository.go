// Package repository handles all interactions with the book store.
//
// It contains the SQL (Postgres) and bucket (bolt) code that persists
// books, and converts driver failures into the model error kinds.
package repository

import (
	"context"

	"github.com/deppfellow/books-api/internal/model"
)

// BookStore is the storage contract shared by every backend.
type BookStore interface {
	// Insert persists a validated book. A duplicate id yields
	// model.ErrDuplicateBook and leaves storage unchanged.
	Insert(ctx context.Context, book model.Book) error

	// GetByID returns the book, or nil and no error when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Book, error)

	// Query returns the books matching filter ordered by id.
	// The result is never nil.
	Query(ctx context.Context, filter model.BookFilter) ([]model.Book, error)

	// Update atomically applies delta and returns the refreshed book.
	// A missing id yields model.ErrBookNotFound.
	Update(ctx context.Context, id int64, delta model.BookDelta) (*model.Book, error)
}
