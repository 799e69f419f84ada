package repository

import (
	"context"
	"strconv"
	"testing"

	"github.com/deppfellow/books-api/internal/config"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// startPostgres runs a throwaway postgres container, migrates it to the
// schema-only version and returns a pool. Tests skip without Docker.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=books",
	})
	require.NoError(t, err, "failed to start postgres")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge resource: %+v", err)
		}
	})

	port, err := strconv.Atoi(resource.GetPort("5432/tcp"))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Database.Host = "localhost"
	cfg.Database.Port = port
	cfg.Database.Password = "secret"

	dsn := database.DSN(&cfg.Database)

	var dbPool *pgxpool.Pool
	err = pool.Retry(func() error {
		p, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(context.Background()); err != nil {
			p.Close()
			return err
		}
		dbPool = p
		return nil
	})
	require.NoError(t, err, "failed to ping postgres")
	t.Cleanup(dbPool.Close)

	logger := zerolog.Nop()
	require.NoError(t, database.MigrateTo(context.Background(), &logger, cfg, 1))

	return dbPool
}

func TestBookRepository(t *testing.T) {
	pool := startPostgres(t)

	testBookStore(t, func(t *testing.T) BookStore {
		_, err := pool.Exec(context.Background(), "TRUNCATE book")
		require.NoError(t, err)
		return NewBookRepository(pool)
	})
}
