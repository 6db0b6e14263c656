// Package config defines the global configuration for the youth-policy
// service. Configuration is loaded once at process startup and is immutable
// thereafter, following 12-Factor principles: values come from the OS
// environment, optionally seeded from a .env file in development.
//
// Any missing required value or invalid format fails the process
// immediately on startup (fail fast). The one deliberate exception is the
// upstream API key: its absence is a runtime precondition error reported by
// the sync entry point itself, so the API server and the other workers can
// still start without it.
package config

import (
	"time"

	"youthpolicy/internal/types"
)

// SecretString aliases types.SecretString, the redacted secret type used
// in configuration to keep sensitive values out of logs.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"youthpolicy"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Notify   NotifyConfig
	Health   HealthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout  time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}

// RedisConfig holds the optional Redis connection used to share the health
// monitor's consecutive-failure counter across instances. When Addr is
// empty the monitor falls back to a process-local counter.
type RedisConfig struct {
	Addr     string       `envconfig:"REDIS_ADDR"`
	Password SecretString `envconfig:"REDIS_PASSWORD"`
	DB       int          `envconfig:"REDIS_DB" default:"0"`
}

// UpstreamConfig holds the government policy API endpoint and credentials.
type UpstreamConfig struct {
	BaseURL  string       `envconfig:"UPSTREAM_BASE_URL" default:"https://www.youthcenter.go.kr/opi/youthPlcyList.do" validate:"required,url"`
	APIKey   SecretString `envconfig:"UPSTREAM_API_KEY"`
	PageSize int          `envconfig:"UPSTREAM_PAGE_SIZE" default:"100" validate:"min=1,max=500"`
	Timeout  time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"15s"`
}

// NotifyConfig holds closing-soon fan-out settings.
type NotifyConfig struct {
	// DefaultLeadDays is the notify_before_days applied to bookmarks that
	// never set a preference.
	DefaultLeadDays int `envconfig:"NOTIFY_DEFAULT_LEAD_DAYS" default:"3" validate:"min=1,max=30"`
	// MaxLeadDays caps per-bookmark lead times in the eligibility query.
	MaxLeadDays int           `envconfig:"NOTIFY_MAX_LEAD_DAYS" default:"30" validate:"min=1,max=90"`
	PushURL     string        `envconfig:"PUSH_API_URL" default:"https://exp.host/--/api/v2/push/send" validate:"required,url"`
	PushTimeout time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
}

// HealthConfig holds upstream health monitor settings. AlertWebhookURL is
// optional: crossing the failure threshold with no endpoint configured is
// a no-op by design.
type HealthConfig struct {
	Source           string        `envconfig:"HEALTH_SOURCE" default:"youthcenter"`
	FailureThreshold int           `envconfig:"HEALTH_FAILURE_THRESHOLD" default:"3" validate:"min=1"`
	ProbeTimeout     time.Duration `envconfig:"HEALTH_PROBE_TIMEOUT" default:"5s"`
	AlertWebhookURL  string        `envconfig:"ALERT_WEBHOOK_URL" validate:"omitempty,url"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into
	// its target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
