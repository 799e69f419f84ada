package handler

import (
	"github.com/deppfellow/books-api/internal/model"
	"github.com/deppfellow/books-api/internal/server"
	"github.com/deppfellow/books-api/internal/service"
	"github.com/labstack/echo/v4"
)

type BookHandler struct {
	Handler
	bookService *service.BookService
}

func NewBookHandler(s *server.Server, bookService *service.BookService) *BookHandler {
	return &BookHandler{
		Handler:     NewHandler(s),
		bookService: bookService,
	}
}

func (h *BookHandler) CreateBook(c echo.Context, req *model.CreateBookRequest) (*model.Book, error) {
	return h.bookService.CreateBook(c.Request().Context(), req.ToBook())
}

func (h *BookHandler) GetBook(c echo.Context, req *model.GetBookRequest) (*model.Book, error) {
	return h.bookService.GetBook(c.Request().Context(), req.ID)
}

func (h *BookHandler) ListBooks(c echo.Context, req *model.ListBooksRequest) ([]model.Book, error) {
	return h.bookService.ListBooks(c.Request().Context(), req.Filter())
}

func (h *BookHandler) UpdateBook(c echo.Context, req *model.UpdateBookRequest) (*model.Book, error) {
	return h.bookService.UpdateBook(c.Request().Context(), req.ID, req.Delta())
}
