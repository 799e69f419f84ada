// Package handler is the HTTP layer, the first entry point after the router.
//
// It binds requests, validates them with the validation package, calls
// the service layer and maps book errors onto HTTP responses.
package handler
