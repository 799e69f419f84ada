package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/deppfellow/books-api/internal/model"
	"github.com/deppfellow/books-api/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	bookColumns = `id, title, author, pages, rating, price`

	insertBookSQL = `
	INSERT INTO book (id, title, author, pages, rating, price)
	VALUES ($1, $2, $3, $4, $5, $6)`

	getBookSQL = `
	SELECT ` + bookColumns + `
	FROM book
	WHERE id = $1`

	queryBooksSQL = `
	SELECT ` + bookColumns + `
	FROM book
	WHERE ($1::text IS NULL OR title ILIKE '%' || $1::text || '%' ESCAPE '\')
	AND ($2::bigint IS NULL OR pages >= $2::bigint)
	ORDER BY id`

	// COALESCE keeps the stored value for every delta field left NULL,
	// so a single statement updates all supplied fields or none.
	updateBookSQL = `
	UPDATE book
	SET price = COALESCE($2, price),
		rating = COALESCE($3, rating)
	WHERE id = $1
	RETURNING ` + bookColumns
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BookRepository is the Postgres BookStore.
type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// Insert writes the row in its own transaction. The primary key decides
// concurrent inserts of one id: exactly one commits, the rest see 23505.
func (r *BookRepository) Insert(ctx context.Context, book model.Book) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertBookSQL,
			book.ID, book.Title, book.Author, book.Pages, book.Rating, book.Price)
		return err
	})
	if err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return model.ErrDuplicateBook
		}
		return model.NewStorageError("insert book", err)
	}

	return nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	rows, err := r.pool.Query(ctx, getBookSQL, id)
	if err != nil {
		return nil, model.NewStorageError("get book", err)
	}

	book, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, model.NewStorageError("get book", err)
	}

	return book, nil
}

func (r *BookRepository) Query(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	var title *string
	if filter.Title != nil {
		escaped := likeEscaper.Replace(*filter.Title)
		title = &escaped
	}

	rows, err := r.pool.Query(ctx, queryBooksSQL, title, filter.MinPages)
	if err != nil {
		return nil, model.NewStorageError("query books", err)
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, model.NewStorageError("query books", err)
	}
	if books == nil {
		books = []model.Book{}
	}

	return books, nil
}

func (r *BookRepository) Update(ctx context.Context, id int64, delta model.BookDelta) (*model.Book, error) {
	rows, err := r.pool.Query(ctx, updateBookSQL, id, delta.Price, delta.Rating)
	if err != nil {
		return nil, model.NewStorageError("update book", err)
	}

	book, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, model.NewStorageError("update book", err)
	}

	return book, nil
}
