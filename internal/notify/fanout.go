// Package notify implements the closing-soon notification fan-out: one
// run selects every bookmarked policy whose deadline falls inside the
// bookmark's lead window and pushes a reminder to the owning user.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"youthpolicy/internal/metrics"
	"youthpolicy/internal/types"
)

// TargetLister selects the (policy, user) pairs due for a reminder.
type TargetLister interface {
	ClosingSoonTargets(ctx context.Context, now time.Time, maxLeadDays int) ([]types.ClosingSoonTarget, error)
}

// PushSender delivers one push notification.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// LogWriter records dispatch attempts. Writes are best-effort.
type LogWriter interface {
	Insert(ctx context.Context, e *types.NotificationLogEntry) error
}

// Notifier runs the closing-soon fan-out.
type Notifier struct {
	targets     TargetLister
	push        PushSender
	log         LogWriter
	maxLeadDays int
	logger      *slog.Logger
	clock       types.Clock
}

// NotifierConfig carries Notifier dependencies.
type NotifierConfig struct {
	Targets     TargetLister
	Push        PushSender
	Log         LogWriter
	MaxLeadDays int
	Logger      *slog.Logger
	Clock       types.Clock
}

// NewNotifier creates a Notifier.
func NewNotifier(cfg NotifierConfig) *Notifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Notifier{
		targets:     cfg.Targets,
		push:        cfg.Push,
		log:         cfg.Log,
		maxLeadDays: cfg.MaxLeadDays,
		logger:      logger,
		clock:       clock,
	}
}

// SendClosingSoon executes one fan-out run. Each dispatch is isolated: a
// failed push is counted and logged, never aborts the remaining targets.
// Only the target query itself can fail the run.
func (n *Notifier) SendClosingSoon(ctx context.Context) (types.NotifyResult, error) {
	now := n.clock.Now()

	targets, err := n.targets.ClosingSoonTargets(ctx, now, n.maxLeadDays)
	if err != nil {
		return types.NotifyResult{}, err
	}

	n.logger.InfoContext(ctx, "closing-soon fan-out started",
		"targets", len(targets))

	var result types.NotifyResult
	for _, t := range targets {
		daysLeft := int(t.EndAt.Sub(now).Hours() / 24)
		title := "청년정책 마감 임박"
		body := fmt.Sprintf("'%s' 신청이 %s 마감됩니다.", t.Title, deadlinePhrase(daysLeft))

		err := n.push.Send(ctx, t.PushToken, title, body)
		entry := types.NotificationLogEntry{
			PolicyID: t.PolicyID,
			UserID:   t.UserID,
			Status:   types.DispatchStatusSent,
			SentAt:   now,
		}
		if err != nil {
			result.Failed++
			metrics.Notifications.WithLabelValues(metrics.OutcomeFailed).Inc()
			reason := err.Error()
			entry.Status = types.DispatchStatusFailed
			entry.FailureReason = &reason
			n.logger.WarnContext(ctx, "push dispatch failed",
				"policy_id", t.PolicyID,
				"user_id", t.UserID,
				"error", err)
		} else {
			result.Sent++
			metrics.Notifications.WithLabelValues(metrics.OutcomeSent).Inc()
		}

		if n.log != nil {
			if logErr := n.log.Insert(ctx, &entry); logErr != nil {
				n.logger.WarnContext(ctx, "notification log write failed",
					"policy_id", t.PolicyID,
					"user_id", t.UserID,
					"error", logErr)
			}
		}
	}

	n.logger.InfoContext(ctx, "closing-soon fan-out finished",
		"sent", result.Sent,
		"failed", result.Failed)
	return result, nil
}

// deadlinePhrase renders the remaining time in user-facing Korean.
func deadlinePhrase(daysLeft int) string {
	switch {
	case daysLeft <= 0:
		return "오늘"
	case daysLeft == 1:
		return "내일"
	default:
		return fmt.Sprintf("%d일 후", daysLeft)
	}
}
