package middleware

import (
	"github.com/deppfellow/books-api/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server,
// built once with their shared dependencies.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and custom attributes.
	Tracing *TracingMiddleware

	// Metrics records Prometheus request metrics. It is a no-op when
	// metrics are disabled.
	Metrics *MetricsMiddleware

	RateLimit *RateLimitMiddleware
}

func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		Metrics:         NewMetricsMiddleware(s.Metrics),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
