// Package main is the entrypoint for the youth-policy API server. It
// serves the public read surface (policies with derived lifecycle status),
// per-user bookmarks, readiness, and Prometheus metrics.
//
// This file handles dependency wiring only; request logic lives in
// internal/api.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"youthpolicy/internal/api"
	"youthpolicy/internal/config"
	"youthpolicy/internal/db"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", cfg.Service, "env", cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingers := map[string]api.Pinger{
		"database": pgxPinger{pool},
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password.Unmask(),
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingers["redis"] = redisPinger{rdb}
	}

	server := api.NewServer(api.ServerConfig{
		Config:    cfg,
		Policies:  db.NewPolicyRepository(pool),
		Bookmarks: db.NewBookmarkRepository(pool),
		Pingers:   pingers,
		Logger:    logger,
	})

	logger.Info("api server initialized", "port", cfg.Server.Port)
	if err := server.Run(ctx); err != nil {
		logger.Error("api server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("api server stopped")
}

// pgxPinger adapts the pgx pool to the readiness Pinger contract.
type pgxPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p pgxPinger) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// redisPinger adapts the go-redis client to the readiness Pinger contract.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
