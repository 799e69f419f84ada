// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the book store (Postgres pool or bolt file)
//   - Prometheus metrics and their scrape server
//   - the API http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/books-api/internal/config"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/deppfellow/books-api/internal/metrics"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/books-api/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; that is configured by SetupHTTPServer.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	// Metrics is nil when observability.metrics.enabled is false.
	Metrics *metrics.Metrics

	httpServer    *http.Server
	metricsServer *http.Server
}

// New opens the configured book store and builds the metrics registry.
// Schema migrations are not run here; see cmd/migrate.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return NewWithDatabase(cfg, logger, loggerService, db), nil
}

// NewWithDatabase builds a Server around an already opened store.
func NewWithDatabase(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, db *database.Database) *Server {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}

	if cfg.Observability.Metrics.Enabled {
		s.Metrics = metrics.New(cfg.Observability.Metrics.Namespace)
	}

	return s
}

// SetupHTTPServer configures the API server around handler and, when
// metrics are enabled, the scrape server on its own port.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}

	if s.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle(s.Config.Observability.Metrics.Path, s.Metrics.Handler())

		s.metricsServer = &http.Server{
			Addr:              ":" + s.Config.Observability.Metrics.Port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
}

// Start runs the HTTP server and blocks until it stops.
// The metrics server runs in the background; its failure is logged only.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	if s.metricsServer != nil {
		go func() {
			s.Logger.Info().
				Str("port", s.Config.Observability.Metrics.Port).
				Str("path", s.Config.Observability.Metrics.Path).
				Msg("starting metrics server")

			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("driver", s.Config.Database.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
