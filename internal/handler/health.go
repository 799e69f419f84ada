package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/books-api/internal/middleware"
	"github.com/deppfellow/books-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth is the liveness probe. It touches no dependency and always
// answers {"status":"ok"}.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CheckStatus is the readiness probe. It runs the configured dependency
// checks and answers 200 when all pass, 503 otherwise.
func (h *HealthHandler) CheckStatus(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "readiness_check").
		Logger()

	cfg := h.server.Config.Observability.HealthChecks

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"driver":      h.server.Config.Database.Driver,
	}
	checks := make(map[string]interface{})
	response["checks"] = checks

	isHealthy := true

	if cfg.Enabled {
		for _, check := range cfg.Checks {
			// "database" is the only known check; config validation rejects others.
			if check != "database" {
				continue
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
			dbStart := time.Now()
			err := h.server.DB.Ping(ctx)
			elapsed := time.Since(dbStart)
			cancel()

			if err != nil {
				isHealthy = false
				checks["database"] = map[string]interface{}{
					"status":        "unhealthy",
					"response_time": elapsed.String(),
					"error":         err.Error(),
				}

				logger.Error().
					Err(err).
					Dur("response_time", elapsed).
					Msg("database readiness check failed")

				if app := h.server.LoggerService.GetApplication(); app != nil {
					app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
						"check_type":       "database",
						"operation":        "readiness_check",
						"error_type":       "database_unhealthy",
						"response_time_ms": elapsed.Milliseconds(),
						"error_message":    err.Error(),
					})
				}
				continue
			}

			checks["database"] = map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("readiness check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("readiness check passed")

	return c.JSON(http.StatusOK, response)
}
