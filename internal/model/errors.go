package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound is returned when the referenced id does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateBook is returned by an insert whose id already exists.
	ErrDuplicateBook = errors.New("book with this primary key already exists")

	// ErrEmptyUpdate is returned when an update payload supplies no mutable field.
	ErrEmptyUpdate = errors.New("no fields to update")
)

// StorageError wraps an infrastructure failure (connectivity, driver,
// serialization) raised while executing Op.
//
// It is the only error kind classified as a server-side fault.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err for operation op. A nil err yields nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
