package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxPushResponseRead limits how much of a provider response body is read
// for error reporting.
const maxPushResponseRead = 4096

// PushClient delivers one push notification to a device token. The engine
// has no knowledge of the underlying transport beyond this contract.
type PushClient struct {
	url    string
	client *Client
	logger *slog.Logger
}

// NewPushClient creates a PushClient against an Expo-compatible push
// endpoint. Delivery uses DoOnce: push sends are not idempotent and a
// retried timeout would double-notify the user.
func NewPushClient(url string, timeout time.Duration, logger *slog.Logger) *PushClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushClient{
		url:    url,
		client: NewClient(&http.Client{Timeout: timeout}, "push", DefaultRetryPolicy()),
		logger: logger,
	}
}

// pushRequest is the provider wire format for a single notification.
type pushRequest struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// pushResponse is the subset of the provider response we inspect.
type pushResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send dispatches one notification. A non-2xx response or a provider-level
// error status is returned as an error; the caller decides whether the
// failure aborts anything (the fan-out never lets it).
func (p *PushClient) Send(ctx context.Context, deviceToken, title, body string) error {
	payload, err := json.Marshal(pushRequest{
		To:    deviceToken,
		Title: title,
		Body:  body,
		Sound: "default",
	})
	if err != nil {
		return fmt.Errorf("encoding push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.DoOnce(req)
	if err != nil {
		return fmt.Errorf("push dispatch: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxPushResponseRead))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed pushResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// A 2xx with an unreadable body still counts as delivered to the
		// provider; log and move on.
		p.logger.Warn("push response body unparsable", "error", err)
		return nil
	}
	if parsed.Data.Status == "error" {
		return fmt.Errorf("push provider rejected notification: %s", parsed.Data.Message)
	}

	return nil
}
