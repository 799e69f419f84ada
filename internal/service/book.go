package service

import (
	"context"

	"github.com/deppfellow/books-api/internal/model"
	"github.com/deppfellow/books-api/internal/repository"
	"github.com/deppfellow/books-api/internal/server"
	"github.com/rs/zerolog"
)

type BookService struct {
	server *server.Server
	store  repository.BookStore
}

func NewBookService(s *server.Server, store repository.BookStore) *BookService {
	return &BookService{
		server: s,
		store:  store,
	}
}

// loggerFor prefers the request-scoped logger carried by ctx, which has
// the request id, and falls back to the server logger.
func (s *BookService) loggerFor(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return s.server.Logger
}

// CreateBook stores a validated book and returns it as persisted.
func (s *BookService) CreateBook(ctx context.Context, book model.Book) (*model.Book, error) {
	logger := s.loggerFor(ctx).With().Int64("book_id", book.ID).Logger()

	if err := s.store.Insert(ctx, book); err != nil {
		if err == model.ErrDuplicateBook {
			logger.Warn().Msg("book already exists")
		} else {
			logger.Error().Err(err).Msg("failed to create book")
		}
		return nil, err
	}

	logger.Info().Str("title", book.Title).Msg("book created")
	return &book, nil
}

func (s *BookService) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.loggerFor(ctx).Error().Err(err).Int64("book_id", id).Msg("failed to get book")
		return nil, err
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}

	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	books, err := s.store.Query(ctx, filter)
	if err != nil {
		s.loggerFor(ctx).Error().Err(err).Msg("failed to list books")
		return nil, err
	}

	return books, nil
}

// UpdateBook applies delta to an existing book. An empty delta is rejected
// before storage is touched.
func (s *BookService) UpdateBook(ctx context.Context, id int64, delta model.BookDelta) (*model.Book, error) {
	if delta.IsEmpty() {
		return nil, model.ErrEmptyUpdate
	}

	logger := s.loggerFor(ctx).With().Int64("book_id", id).Logger()

	book, err := s.store.Update(ctx, id, delta)
	if err != nil {
		if err != model.ErrBookNotFound {
			logger.Error().Err(err).Msg("failed to update book")
		}
		return nil, err
	}

	logger.Info().Msg("book updated")
	return book, nil
}
