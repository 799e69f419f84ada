package middleware

import (
	"errors"
	"time"

	"github.com/deppfellow/books-api/internal/metrics"
	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that hit no route, so arbitrary paths
// cannot grow the label set.
const unmatchedRoute = "unmatched"

type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware accepts a nil m, in which case Record is a no-op.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Record observes count, latency and in-flight requests per route pattern.
func (mm *MetricsMiddleware) Record() echo.MiddlewareFunc {
	if mm.metrics == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mm.metrics.RequestsInFlight.Inc()
			defer mm.metrics.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" || errors.Is(err, echo.ErrNotFound) || errors.Is(err, echo.ErrMethodNotAllowed) {
				route = unmatchedRoute
			}

			mm.metrics.Observe(c.Request().Method, route, statusFromError(c, err), time.Since(start))

			return err
		}
	}
}
