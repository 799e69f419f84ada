package sqlerr

import (
	"database/sql"
	"errors"

	"github.com/deppfellow/books-api/internal/errs"

	"github.com/jackc/pgx/v5"
)

// HandleError converts an error no handler has classified into an
// *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - ErrNoRows: 404
//   - anything else, driver errors included: 500
//
// Constraint violations never get here as client errors: the stores turn
// the ones clients can cause into domain errors and wrap the rest as
// storage failures.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", nil)
	}

	return errs.NewInternalServerError()
}
