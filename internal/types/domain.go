package types

import (
	"encoding/json"
	"time"
)

// Policy is the canonical record for a single government youth policy.
// The ID is the upstream-supplied external identifier and acts as the
// primary key: re-ingesting the same id mutates the row in place.
//
// Invariants: IsAlwaysOpen == true implies StartAt and EndAt are both nil;
// when both dates are present, StartAt <= EndAt (the interval parser never
// produces an inverted range).
type Policy struct {
	ID           string          `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Summary      *string         `json:"summary,omitempty" db:"summary"`
	Category     Category        `json:"category" db:"category"`
	Region       Region          `json:"region" db:"region"`
	StartAt      *time.Time      `json:"start_at,omitempty" db:"start_at"`
	EndAt        *time.Time      `json:"end_at,omitempty" db:"end_at"`
	IsAlwaysOpen bool            `json:"is_always_open" db:"is_always_open"`
	ApplyURL     *string         `json:"apply_url,omitempty" db:"apply_url"`
	Detail       json.RawMessage `json:"detail,omitempty" db:"detail"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Derived on every read, never persisted.
	Status PolicyStatus `json:"status,omitempty" db:"-"`
}

// Bookmark links a user to a policy they want deadline notifications for.
// The (UserID, PolicyID) pair is unique. NotifyBeforeDays is the per-user
// lead time for closing-soon notifications.
type Bookmark struct {
	UserID           string    `json:"user_id" db:"user_id"`
	PolicyID         string    `json:"policy_id" db:"policy_id"`
	NotifyBeforeDays int       `json:"notify_before_days" db:"notify_before_days"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// BookmarkedPolicy pairs a bookmark with its policy for list views.
type BookmarkedPolicy struct {
	Bookmark Bookmark `json:"bookmark"`
	Policy   Policy   `json:"policy"`
}

// ClosingSoonTarget is one (policy, user) dispatch pair produced by the
// closing-soon eligibility query. The push token is read from the users
// table, which is owned by the external auth collaborator.
type ClosingSoonTarget struct {
	PolicyID  string    `db:"policy_id"`
	Title     string    `db:"title"`
	EndAt     time.Time `db:"end_at"`
	UserID    string    `db:"user_id"`
	PushToken string    `db:"push_token"`
}

// HealthCheckSample records the outcome of a single upstream probe.
// Persisting a sample is best-effort; a write failure never fails the probe.
type HealthCheckSample struct {
	Source         string    `json:"source" db:"source"`
	IsHealthy      bool      `json:"is_healthy" db:"is_healthy"`
	StatusCode     int       `json:"status_code" db:"status_code"`
	ResponseTimeMs int64     `json:"response_time_ms" db:"response_time_ms"`
	Error          *string   `json:"error,omitempty" db:"error"`
	CheckedAt      time.Time `json:"checked_at" db:"checked_at"`
}

// NotificationLogEntry records one push dispatch attempt made by the
// closing-soon fan-out. Written best-effort.
type NotificationLogEntry struct {
	ID            string    `db:"id"`
	PolicyID      string    `db:"policy_id"`
	UserID        string    `db:"user_id"`
	Status        string    `db:"status"`
	FailureReason *string   `db:"failure_reason"`
	SentAt        time.Time `db:"sent_at"`
}

// SyncResult is the structured outcome of one ingestion run. Partial
// failures are reported through the counters rather than raised; Error is
// set only when the run aborted early (page fetch failure).
type SyncResult struct {
	Success  bool   `json:"success"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Errors   int    `json:"errors"`
	Error    string `json:"error,omitempty"`
}

// NotifyResult is the structured outcome of one closing-soon fan-out run.
type NotifyResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ProbeResult is the structured outcome of one health probe. A result is
// produced even when the upstream is down; the probe run itself only fails
// on programmer error, never on upstream state.
type ProbeResult struct {
	Healthy             bool        `json:"healthy"`
	State               HealthState `json:"state"`
	StatusCode          int         `json:"status_code,omitempty"`
	ResponseTimeMs      int64       `json:"response_time_ms"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	AlertSent           bool        `json:"alert_sent"`
	Error               string      `json:"error,omitempty"`
}
