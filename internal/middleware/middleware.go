// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request logging, metrics, tracing, CORS,
// rate limiting, panic recovery and error rendering.
package middleware
