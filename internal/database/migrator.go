package database

import (
	"context"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/boltdb/bolt"
	"github.com/deppfellow/books-api/internal/config"
	"github.com/deppfellow/books-api/internal/model"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Embed all SQL files under migrations/ at compile time so the binary
// carries its own schema.
//
//go:embed migrations/*.sql
var migrations embed.FS

// LatestVersion migrates to the newest available version.
const LatestVersion = -1

var schemaVersionBucket = []byte("schema_version")

// SeedBooks are the rows inserted by the seed migration, for both backends.
var SeedBooks = []model.Book{
	{ID: 1, Title: "To Kill a Mockingbird", Author: "Harper Lee", Pages: 324, Rating: 4.8, Price: 14.99},
	{ID: 2, Title: "1984", Author: "George Orwell", Pages: 328, Rating: 4.7, Price: 12.95},
	{ID: 3, Title: "Animal Farm", Author: "George Orwell", Pages: 112, Rating: 4.6, Price: 8.99},
	{ID: 4, Title: "Pride and Prejudice", Author: "Jane Austen", Pages: 279, Rating: 4.6, Price: 9.99},
	{ID: 5, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Pages: 180, Rating: 4.4, Price: 10.99},
}

// BookKey encodes id so that bolt's byte ordering matches numeric ordering,
// negative ids included.
func BookKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id)^(1<<63))
	return key
}

// Migrate brings the schema up to the latest version.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	return MigrateTo(ctx, logger, cfg, LatestVersion)
}

// MigrateTo moves the schema to target (LatestVersion for the newest).
// It is run out-of-band by cmd/migrate, never by the API process.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	switch cfg.Database.Driver {
	case config.DriverBolt:
		db, err := NewBolt(&cfg.Database.Bolt, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return MigrateBolt(db.Bolt, logger, target)
	case config.DriverPostgres:
		return migratePostgres(ctx, logger, cfg, target)
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func migratePostgres(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	// A single connection is enough for a one-off migration run.
	conn, err := pgx.Connect(ctx, DSN(&cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if target == LatestVersion {
		target = int32(len(m.Migrations))
	}

	if err := m.MigrateTo(ctx, target); err != nil {
		return err
	}

	logMigration(logger, from, target)
	return nil
}

// boltMigrations are applied in order; index+1 is the version number.
var boltMigrations = []struct {
	name string
	up   func(tx *bolt.Tx) error
	down func(tx *bolt.Tx) error
}{
	{
		name: "create_book",
		up: func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(BookBucket)
			return err
		},
		down: func(tx *bolt.Tx) error {
			err := tx.DeleteBucket(BookBucket)
			if err == bolt.ErrBucketNotFound {
				return nil
			}
			return err
		},
	},
	{
		name: "seed_books",
		up: func(tx *bolt.Tx) error {
			bucket := tx.Bucket(BookBucket)
			for _, b := range SeedBooks {
				value, err := json.Marshal(b)
				if err != nil {
					return err
				}
				if err := bucket.Put(BookKey(b.ID), value); err != nil {
					return err
				}
			}
			return nil
		},
		down: func(tx *bolt.Tx) error {
			bucket := tx.Bucket(BookBucket)
			for _, b := range SeedBooks {
				if err := bucket.Delete(BookKey(b.ID)); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// MigrateBolt applies bolt migrations up or down to target in one
// transaction, recording the version alongside the data.
func MigrateBolt(db *bolt.DB, logger *zerolog.Logger, target int32) error {
	latest := int32(len(boltMigrations))
	if target == LatestVersion {
		target = latest
	}
	if target < 0 || target > latest {
		return fmt.Errorf("migration target %d out of range [0, %d]", target, latest)
	}

	var from int32
	err := db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(schemaVersionBucket)
		if err != nil {
			return err
		}

		if raw := meta.Get(schemaVersionBucket); raw != nil {
			from = int32(binary.BigEndian.Uint32(raw))
		}

		for v := from; v < target; v++ {
			if err := boltMigrations[v].up(tx); err != nil {
				return fmt.Errorf("migration %d %s: %w", v+1, boltMigrations[v].name, err)
			}
		}
		for v := from; v > target; v-- {
			if err := boltMigrations[v-1].down(tx); err != nil {
				return fmt.Errorf("rollback %d %s: %w", v, boltMigrations[v-1].name, err)
			}
		}

		version := make([]byte, 4)
		binary.BigEndian.PutUint32(version, uint32(target))
		return meta.Put(schemaVersionBucket, version)
	})
	if err != nil {
		return err
	}

	logMigration(logger, from, target)
	return nil
}

func logMigration(logger *zerolog.Logger, from, to int32) {
	if from == to {
		logger.Info().Msgf("database schema up to date, version %d", to)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, to)
	}
}
