package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/deppfellow/books-api/internal/config"
	"github.com/deppfellow/books-api/internal/database"
	"github.com/deppfellow/books-api/internal/logger"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration")
	version := flag.Int("version", database.LatestVersion, "target schema version (-1 for latest)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewLogger(cfg.Observability)

	target := int32(*version)
	if *down {
		target = 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.MigrateTo(ctx, &log, cfg, target); err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to migrate database")
	}
}
