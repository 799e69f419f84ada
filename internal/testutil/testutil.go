// Package testutil builds servers for tests on a throwaway bolt store.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/deppfellow/books-api/internal/config"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/deppfellow/books-api/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// NewConfig returns the default config switched to a bolt file in a
// per-test temporary directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Primary.Env = "test"
	cfg.Observability.Environment = "test"
	cfg.Database.Driver = config.DriverBolt
	cfg.Database.Bolt.Path = filepath.Join(t.TempDir(), "books.db")
	cfg.Database.Bolt.Timeout = time.Second

	return cfg
}

// NewServer opens an empty, migrated bolt store and wraps it in a Server.
// The store is closed when the test ends.
func NewServer(t *testing.T) *server.Server {
	t.Helper()
	return NewServerWithConfig(t, NewConfig(t))
}

func NewServerWithConfig(t *testing.T, cfg *config.Config) *server.Server {
	t.Helper()

	logger := zerolog.Nop()

	db, err := database.NewBolt(&cfg.Database.Bolt, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Schema only; tests that want the seed rows migrate further themselves.
	require.NoError(t, database.MigrateBolt(db.Bolt, &logger, 1))

	return server.NewWithDatabase(cfg, &logger, nil, db)
}
