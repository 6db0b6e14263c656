// Package main is the entrypoint for the closing-soon notification
// worker. One invocation selects every bookmarked policy whose deadline
// falls inside the bookmark's lead window and pushes a reminder to the
// owning user. Designed to run once a day.
package main

import (
	"context"
	"log/slog"
	"os"

	"youthpolicy/internal/config"
	"youthpolicy/internal/db"
	"youthpolicy/internal/external"
	"youthpolicy/internal/notify"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With("service", cfg.Service, "job", "notify-worker", "env", cfg.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	notifier := notify.NewNotifier(notify.NotifierConfig{
		Targets:     db.NewBookmarkRepository(pool),
		Push:        external.NewPushClient(cfg.Notify.PushURL, cfg.Notify.PushTimeout, logger),
		Log:         db.NewNotificationLogRepository(pool),
		MaxLeadDays: cfg.Notify.MaxLeadDays,
		Logger:      logger,
	})

	result, err := notifier.SendClosingSoon(ctx)
	if err != nil {
		logger.Error("fan-out run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("fan-out run finished",
		"sent", result.Sent,
		"failed", result.Failed,
	)
}
