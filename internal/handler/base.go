package handler

import (
	"errors"
	"reflect"
	"time"

	"github.com/deppfellow/books-api/internal/errs"
	"github.com/deppfellow/books-api/internal/middleware"
	"github.com/deppfellow/books-api/internal/model"
	"github.com/deppfellow/books-api/internal/server"
	"github.com/deppfellow/books-api/internal/sqlerr"
	"github.com/deppfellow/books-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
//
// Concrete handlers (BookHandler, HealthHandler, ...) embed it to reach
// config, logger and the store through *server.Server.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives a bound, validated request
// payload and returns the response body or an error.
//
// Req is a pointer to a struct, since echo binds into it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler defines how a successful result is written and which
// New Relic attributes it adds.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	switch v := result.(type) {
	case *model.Book:
		txn.AddAttribute("book.id", v.ID)
	case []model.Book:
		txn.AddAttribute("books.count", len(v))
	}
}

// toHTTPError maps the book error kinds onto client responses.
// Errors it does not know are returned unchanged for the global handler.
func toHTTPError(err error) error {
	var storageErr *model.StorageError

	switch {
	case errors.Is(err, model.ErrEmptyUpdate):
		return errs.NewBadRequestError("No fields to update", nil, nil)
	case errors.Is(err, model.ErrBookNotFound):
		code := "BOOK_NOT_FOUND"
		return errs.NewNotFoundError("Book not found", &code)
	case errors.Is(err, model.ErrDuplicateBook):
		code := "BOOK_ALREADY_EXISTS"
		return errs.NewBadRequestError("Book with this primary key already exists", &code, nil)
	case errors.As(err, &storageErr):
		return errs.NewInternalServerError()
	}

	return err
}

// newRequest allocates a zero payload of the same type as proto.
// Each request binds into its own value; proto is never written.
func newRequest[Req validation.Validatable](proto Req) Req {
	return reflect.New(reflect.TypeOf(proto).Elem()).Interface().(Req)
}

// handleRequest is the shared execution pipeline for all typed handlers.
//
// It centralizes binding + validation, structured logging with the
// request logger, New Relic attributes and error reporting, timing, and
// response writing.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return toHTTPError(err)
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)
		httpErr := toHTTPError(err)

		event := logger.Warn()
		var storageErr *model.StorageError
		if errors.As(err, &storageErr) {
			event = logger.Error().
				Str("storage_op", storageErr.Op).
				Str("db_error", string(sqlerr.Classify(err)))
		}
		event.
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return httpErr
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with binding, validation, error mapping,
// logging and tracing, and returns it as an echo.HandlerFunc.
//
// req is a prototype: a fresh value of its type is bound for every request.
//
//	router.POST("/books", handler.Handle(h, bookHandler.CreateBook, http.StatusCreated, &model.CreateBookRequest{}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newRequest(req), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}
