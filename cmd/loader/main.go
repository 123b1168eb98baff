// Command loader inserts the games of a CSV export into postgres, skipping titles already stored.
package main

import (
	"context"
	"flag"
	"github.com/IlyasAtabaev731/game-rental/internal/catalog"
	"github.com/IlyasAtabaev731/game-rental/internal/config"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/postgres"
	"log/slog"
	"os"
)

func main() {
	csvPath := flag.String("csv", "", "path to games CSV (defaults to catalog.path from config)")

	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	path := *csvPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		log.Error("No catalog path given")
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.Postgres.URL())
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Stop(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if _, err := catalog.LoadFile(context.Background(), log, storage, path); err != nil {
		log.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}
}
