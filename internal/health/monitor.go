package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"youthpolicy/internal/ingest"
	"youthpolicy/internal/metrics"
	"youthpolicy/internal/types"
)

// maxProbeBodyRead caps how much of the probe response is read for the
// payload check.
const maxProbeBodyRead = 1 << 20

// SampleWriter persists probe samples. Writes are best-effort.
type SampleWriter interface {
	Insert(ctx context.Context, s *types.HealthCheckSample) error
}

// Alerter delivers operator alerts. Configured() is false when no endpoint
// is set, in which case crossing the threshold is logged but not alerted.
type Alerter interface {
	Configured() bool
	Send(ctx context.Context, text string) error
}

// Monitor probes the upstream policy portal and tracks consecutive
// failures. It deliberately bypasses the retrying client: a probe measures
// raw upstream behavior, and masking a transient failure with a retry
// would hide exactly the signal the counter exists to accumulate.
type Monitor struct {
	source    string
	baseURL   string
	apiKey    types.SecretString
	threshold int
	client    *http.Client
	counter   FailureCounter
	samples   SampleWriter
	alerter   Alerter
	logger    *slog.Logger
	clock     types.Clock
}

// MonitorConfig carries Monitor dependencies.
type MonitorConfig struct {
	Source    string
	BaseURL   string
	APIKey    types.SecretString
	Threshold int
	Timeout   time.Duration
	Counter   FailureCounter
	Samples   SampleWriter
	Alerter   Alerter
	Logger    *slog.Logger
	Clock     types.Clock
}

// NewMonitor creates a Monitor.
func NewMonitor(cfg MonitorConfig) *Monitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Monitor{
		source:    cfg.Source,
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		threshold: cfg.Threshold,
		client:    &http.Client{Timeout: cfg.Timeout},
		counter:   cfg.Counter,
		samples:   cfg.Samples,
		alerter:   cfg.Alerter,
		logger:    logger,
		clock:     clock,
	}
}

// RunCheck executes one probe and advances the failure state machine.
// A down upstream is a normal outcome, reported through the result; the
// returned error covers only counter access failures, where the incident
// state is unknowable and the run cannot proceed honestly.
//
// The alert fires exactly when the consecutive-failure count reaches the
// threshold: below it the monitor is degraded but quiet, above it the
// incident has already been announced.
func (m *Monitor) RunCheck(ctx context.Context) (types.ProbeResult, error) {
	checkedAt := m.clock.Now()
	statusCode, elapsed, probeErr := m.probe(ctx)

	metrics.ProbeDuration.Observe(elapsed.Seconds())

	sample := types.HealthCheckSample{
		Source:         m.source,
		IsHealthy:      probeErr == nil,
		StatusCode:     statusCode,
		ResponseTimeMs: elapsed.Milliseconds(),
		CheckedAt:      checkedAt,
	}
	if probeErr != nil {
		msg := probeErr.Error()
		sample.Error = &msg
	}
	if m.samples != nil {
		if err := m.samples.Insert(ctx, &sample); err != nil {
			m.logger.WarnContext(ctx, "health sample write failed", "error", err)
		}
	}

	result := types.ProbeResult{
		Healthy:        probeErr == nil,
		StatusCode:     statusCode,
		ResponseTimeMs: elapsed.Milliseconds(),
	}

	if probeErr == nil {
		metrics.HealthProbes.WithLabelValues(metrics.OutcomeOK).Inc()
		previous, err := m.counter.Get(ctx)
		if err != nil {
			return result, err
		}
		if previous > 0 {
			m.logger.InfoContext(ctx, "upstream recovered",
				"source", m.source,
				"after_failures", previous)
		}
		if err := m.counter.Reset(ctx); err != nil {
			return result, err
		}
		result.State = types.HealthStateHealthy
		return result, nil
	}

	metrics.HealthProbes.WithLabelValues(metrics.OutcomeFailed).Inc()
	count, err := m.counter.Increment(ctx)
	if err != nil {
		return result, err
	}
	result.ConsecutiveFailures = count
	result.Error = probeErr.Error()

	m.logger.WarnContext(ctx, "upstream probe failed",
		"source", m.source,
		"consecutive_failures", count,
		"threshold", m.threshold,
		"error", probeErr)

	switch {
	case count < m.threshold:
		result.State = types.HealthStateDegraded
	case count == m.threshold:
		result.State = types.HealthStateAlerted
		result.AlertSent = m.fireAlert(ctx, count, probeErr)
	default:
		// Incident already announced; stay quiet until recovery.
		result.State = types.HealthStateAlerted
	}
	return result, nil
}

// probe issues one minimal list request (page 1, one record) and verifies
// the response parses as the expected envelope. A reachable endpoint
// returning garbage is just as unhealthy as an unreachable one.
func (m *Monitor) probe(ctx context.Context) (statusCode int, elapsed time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ingest.BuildListURL(m.baseURL, m.apiKey, 1, 1), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("building probe request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := m.clock.Now()
	resp, err := m.client.Do(req)
	elapsed = m.clock.Now().Sub(start)
	if err != nil {
		return 0, elapsed, fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, elapsed, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodyRead))
	if err != nil {
		return resp.StatusCode, elapsed, fmt.Errorf("reading probe response: %w", err)
	}
	var page ingest.PolicyPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return resp.StatusCode, elapsed, fmt.Errorf("malformed probe response: %w", err)
	}
	return resp.StatusCode, elapsed, nil
}

// fireAlert sends the threshold-crossing alert. Delivery failure is logged
// and swallowed; the probe result still records the crossing.
func (m *Monitor) fireAlert(ctx context.Context, count int, cause error) bool {
	if m.alerter == nil || !m.alerter.Configured() {
		m.logger.WarnContext(ctx, "failure threshold reached, no alert endpoint configured",
			"source", m.source,
			"consecutive_failures", count)
		return false
	}

	text := fmt.Sprintf("[youthpolicy] upstream %q unhealthy: %d consecutive probe failures (last error: %v)",
		m.source, count, cause)
	if err := m.alerter.Send(ctx, text); err != nil {
		m.logger.ErrorContext(ctx, "alert delivery failed",
			"source", m.source,
			"error", err)
		return false
	}
	m.logger.InfoContext(ctx, "incident alert sent",
		"source", m.source,
		"consecutive_failures", count)
	return true
}
