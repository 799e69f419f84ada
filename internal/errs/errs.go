// Package errs defines the error shapes returned to API clients.
//
// Every failure that crosses the HTTP boundary is converted into an
// *HTTPError so clients always receive the same JSON body:
//
//	{ "detail": "Book not found" }
//
// Validation failures additionally carry per-field errors.
package errs
