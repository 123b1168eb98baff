package main

import (
	"context"
	"github.com/IlyasAtabaev731/game-rental/internal/api"
	"github.com/IlyasAtabaev731/game-rental/internal/catalog"
	"github.com/IlyasAtabaev731/game-rental/internal/config"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/services/auth"
	"github.com/IlyasAtabaev731/game-rental/internal/services/ledger"
	"github.com/IlyasAtabaev731/game-rental/internal/services/recommend"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/memory"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/postgres"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type storage interface {
	SaveUser(ctx context.Context, username string, passHash []byte) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	SaveGame(ctx context.Context, game models.Game) (bool, error)
	Games(ctx context.Context) ([]models.Game, error)
	RentGame(ctx context.Context, username, title string) error
	ReturnGame(ctx context.Context, username, title string) error
	Snapshot(ctx context.Context, username string) (*models.User, []models.Game, error)
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting application",
		slog.String("env", cfg.Env),
		slog.String("host", cfg.ApiHost),
		slog.Int("port", cfg.ApiPort),
		slog.String("storage", cfg.Storage),
	)

	store, stop, err := setupStorage(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stop(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	if cfg.Catalog.Path != "" {
		if _, err := catalog.LoadFile(context.Background(), log, store, cfg.Catalog.Path); err != nil {
			log.Error("Failed to load catalog", "error", err)
			os.Exit(1)
		}
	}

	apiServer := api.New(cfg, log, api.Services{
		Auth:   auth.New(log, store),
		Ledger: ledger.New(log, store),
		Recommender: recommend.New(log, store, recommend.Config{
			Seed:        cfg.Recommend.Seed,
			Limit:       cfg.Recommend.Limit,
			MaxAttempts: cfg.Recommend.MaxAttempts,
		}),
		Storage: store,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		apiServer.MustStart()
	}()

	<-sigChan
	log.Info("Got signal to shutdown server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(ctx); err != nil {
		log.Error("Stopping server error", "error", err)
	}
}

func setupStorage(cfg *config.Config) (storage, func() error, error) {
	if cfg.Storage == config.StorageMemory {
		return memory.New(), func() error { return nil }, nil
	}

	pg, err := postgres.New(cfg.Postgres.URL())
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Stop, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}
