// Package main is the entrypoint for the policy sync worker. One
// invocation performs one full catalog pass against the government
// youth-policy API: paginate, normalize, upsert. It is designed to run on
// a schedule (cron or an equivalent job runner).
package main

import (
	"context"
	"log/slog"
	"os"

	"youthpolicy/internal/config"
	"youthpolicy/internal/db"
	"youthpolicy/internal/ingest"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", cfg.Service, "job", "sync-worker", "env", cfg.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	regions, err := ingest.NewRegionResolver()
	if err != nil {
		logger.Error("failed to load region alias table", "error", err)
		os.Exit(1)
	}

	syncer := ingest.NewSyncer(ingest.SyncerConfig{
		APIKey: cfg.Upstream.APIKey,
		Fetcher: ingest.NewUpstreamClient(
			cfg.Upstream.BaseURL,
			cfg.Upstream.APIKey,
			cfg.Upstream.PageSize,
			cfg.Upstream.Timeout,
		),
		Store:   db.NewPolicyRepository(pool),
		Regions: regions,
		Logger:  logger,
	})

	result, err := syncer.Sync(ctx)
	if err != nil {
		logger.Error("sync run failed", "error", err)
		os.Exit(1)
	}
	if !result.Success {
		logger.Error("sync run aborted",
			"total", result.Total,
			"inserted", result.Inserted,
			"updated", result.Updated,
			"errors", result.Errors,
			"cause", result.Error,
		)
		os.Exit(1)
	}

	logger.Info("sync run finished",
		"total", result.Total,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"errors", result.Errors,
	)
}
