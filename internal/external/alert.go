package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AlertWebhook posts operator alerts to a configured webhook endpoint.
// The payload is a single human-readable text field, compatible with
// Slack-style incoming webhooks.
type AlertWebhook struct {
	url    string
	client *http.Client
}

// NewAlertWebhook creates an AlertWebhook. An empty url produces a client
// whose Configured() is false; the health monitor treats that as "no alert
// endpoint" rather than an error.
func NewAlertWebhook(url string, timeout time.Duration) *AlertWebhook {
	return &AlertWebhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an alert endpoint is set.
func (a *AlertWebhook) Configured() bool {
	return a.url != ""
}

// Send posts the alert text. Callers are expected to log-and-swallow the
// returned error: alert delivery failure must never fail the probe run.
func (a *AlertWebhook) Send(ctx context.Context, text string) error {
	if a.url == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encoding alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned %d", resp.StatusCode)
	}
	return nil
}
