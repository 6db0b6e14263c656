package db

import (
	"context"

	"github.com/google/uuid"

	"youthpolicy/internal/types"
)

// HealthSampleRepository persists health probe samples. Writes are
// best-effort at the call site: the monitor logs and swallows failures.
type HealthSampleRepository struct {
	db DBTX
}

// NewHealthSampleRepository creates a HealthSampleRepository.
func NewHealthSampleRepository(db DBTX) *HealthSampleRepository {
	return &HealthSampleRepository{db: db}
}

// Insert writes one probe sample.
func (r *HealthSampleRepository) Insert(ctx context.Context, s *types.HealthCheckSample) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO health_check_samples
		 (source, is_healthy, status_code, response_time_ms, error, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.Source, s.IsHealthy, s.StatusCode, s.ResponseTimeMs, s.Error, s.CheckedAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert health sample", err)
	}
	return nil
}

// NotificationLogRepository records push dispatch attempts made by the
// closing-soon fan-out. Like health samples, writes are best-effort.
type NotificationLogRepository struct {
	db DBTX
}

// NewNotificationLogRepository creates a NotificationLogRepository.
func NewNotificationLogRepository(db DBTX) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Insert writes one dispatch log entry. A missing ID is generated here so
// callers do not need to care about row identity.
func (r *NotificationLogRepository) Insert(ctx context.Context, e *types.NotificationLogEntry) error {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO notification_log
		 (id, policy_id, user_id, status, failure_reason, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, e.PolicyID, e.UserID, e.Status, e.FailureReason, e.SentAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert notification log entry", err)
	}
	return nil
}
