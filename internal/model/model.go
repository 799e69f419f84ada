// Package model holds the book entity, its request payloads and the
// typed errors shared by the validation, storage and handler layers.
package model
