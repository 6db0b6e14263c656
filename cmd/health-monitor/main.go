// Package main is the entrypoint for the upstream health monitor. One
// invocation performs one probe of the government policy API, advances the
// consecutive-failure counter, and fires the operator alert when failures
// cross the configured threshold. Designed to run every few minutes.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"youthpolicy/internal/config"
	"youthpolicy/internal/db"
	"youthpolicy/internal/external"
	"youthpolicy/internal/health"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", cfg.Service, "job", "health-monitor", "env", cfg.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The counter must outlive this process, so Redis is preferred. The
	// in-memory fallback only makes sense when the monitor runs as a
	// long-lived single instance.
	var counter health.FailureCounter = health.NewMemoryCounter()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password.Unmask(),
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		counter = health.NewRedisCounter(rdb, cfg.Health.Source)
	} else {
		logger.Warn("no redis configured, failure counter will not survive process restarts")
	}

	monitor := health.NewMonitor(health.MonitorConfig{
		Source:    cfg.Health.Source,
		BaseURL:   cfg.Upstream.BaseURL,
		APIKey:    cfg.Upstream.APIKey,
		Threshold: cfg.Health.FailureThreshold,
		Timeout:   cfg.Health.ProbeTimeout,
		Counter:   counter,
		Samples:   db.NewHealthSampleRepository(pool),
		Alerter:   external.NewAlertWebhook(cfg.Health.AlertWebhookURL, 10*time.Second),
		Logger:    logger,
	})

	result, err := monitor.RunCheck(ctx)
	if err != nil {
		logger.Error("probe run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("probe run finished",
		"healthy", result.Healthy,
		"state", result.State,
		"status_code", result.StatusCode,
		"response_time_ms", result.ResponseTimeMs,
		"consecutive_failures", result.ConsecutiveFailures,
		"alert_sent", result.AlertSent,
	)
}
