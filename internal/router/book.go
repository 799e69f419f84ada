package router

import (
	"net/http"

	"github.com/deppfellow/books-api/internal/handler"
	"github.com/deppfellow/books-api/internal/model"
	"github.com/labstack/echo/v4"
)

func registerBookRoutes(r *echo.Echo, h *handler.Handlers) {
	base := h.Book.Handler
	books := r.Group("/books")

	books.GET("", handler.Handle(base, h.Book.ListBooks, http.StatusOK, &model.ListBooksRequest{}))
	books.POST("", handler.Handle(base, h.Book.CreateBook, http.StatusCreated, &model.CreateBookRequest{}))
	books.GET("/:id", handler.Handle(base, h.Book.GetBook, http.StatusOK, &model.GetBookRequest{}))
	books.PUT("/:id", handler.Handle(base, h.Book.UpdateBook, http.StatusOK, &model.UpdateBookRequest{}))
}
