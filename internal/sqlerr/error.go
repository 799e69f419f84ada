package sqlerr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Code is a driver-independent classification of a database error.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	SerializationFailure Code = "serialization_failure"
	DeadlockDetected     Code = "deadlock_detected"
	ConnectionException  Code = "connection_exception"
)

// MapCode maps a SQLSTATE to a Code.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "40001":
		return SerializationFailure
	case "40P01":
		return DeadlockDetected
	}

	// Class 08 covers every connection failure variant.
	if strings.HasPrefix(sqlState, "08") {
		return ConnectionException
	}

	return Other
}

// Classify returns the Code of the first driver error found in err's chain,
// or Other when there is none.
func Classify(err error) Code {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}

	return Other
}

// IsUniqueViolation reports whether err is a uniqueness-constraint violation.
func IsUniqueViolation(err error) bool {
	return Classify(err) == UniqueViolation
}
