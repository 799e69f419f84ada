// Package sqlerr specifically handles database driver errors.
//
// It classifies SQLSTATE codes from the database driver into a structured
// Code (e.g. UniqueViolation), so callers branch on the code instead of
// matching driver message text.
package sqlerr
