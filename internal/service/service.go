// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, applies the book
// rules that span storage calls, and returns model errors.
package service
