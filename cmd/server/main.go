package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/townsquare/internal/config"
	"github.com/playperu/townsquare/internal/database"
	"github.com/playperu/townsquare/internal/handler/health"
	"github.com/playperu/townsquare/internal/leaderboard"
	"github.com/playperu/townsquare/internal/maps"
	"github.com/playperu/townsquare/internal/migrations"
	"github.com/playperu/townsquare/internal/server"
	"github.com/playperu/townsquare/internal/town"
	"github.com/playperu/townsquare/internal/video"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := make(map[string]health.Checker)

	// --- Leaderboard ---
	var board leaderboard.Store
	switch cfg.LeaderboardBackend {
	case "sqlite":
		db, err := database.Open(ctx, database.MemoryPath)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		defer db.Close()

		applied, err := migrations.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store := leaderboard.NewSQLStore(db)
		checks["leaderboard"] = health.CheckerFunc(store.Ping)
		board = store
		logger.Info("leaderboard on sqlite", "path", database.MemoryPath, "migrations", applied)
	default:
		board = leaderboard.NewMemoryStore()
		logger.Info("leaderboard in memory")
	}

	// --- Maps ---
	loader := maps.NewLoader(cfg.MapsDir)
	checks["maps"] = health.CheckerFunc(func(context.Context) error {
		_, err := loader.Load(cfg.DefaultMap)
		return err
	})

	// --- Video ---
	var tokens town.TokenProvider = video.NewJWTProvider(video.Config{
		AccountSID:   cfg.Video.AccountSID,
		APIKeySID:    cfg.Video.APIKeySID,
		APIKeySecret: cfg.Video.APIKeySecret,
		TTL:          cfg.Video.TokenTTL,
	})
	if cfg.Video.DevMode {
		tokens = video.DevProvider{}
		logger.Warn("video dev mode: issuing placeholder tokens")
	}

	// --- Towns ---
	hub := server.NewHub()
	registry := town.NewRegistry(hub, loader, town.Services{
		Video:       tokens,
		Leaderboard: board,
		Logger:      logger,
	})
	if err := server.SeedTown(ctx, logger, registry, cfg.SeedTownName, cfg.SeedTownMap); err != nil {
		return fmt.Errorf("seeding town: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Registry:    registry,
		Hub:         hub,
		Leaderboard: board,
		Checks:      checks,
		DefaultMap:  cfg.DefaultMap,
		SPADir:      cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("closing towns")
		registry.Close()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
