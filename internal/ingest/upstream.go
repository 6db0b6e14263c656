// upstream.go implements the HTTP client for the government youth-policy
// list API: one GET endpoint taking an API key, a 1-based page index, and
// a page size, returning a JSON envelope with the total count and the
// records of that page.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"youthpolicy/internal/external"
	"youthpolicy/internal/types"
)

// PolicyPage is the upstream list envelope.
type PolicyPage struct {
	PageIndex  int              `json:"pageIndex"`
	TotalCount int              `json:"totalCnt"`
	Policies   []UpstreamPolicy `json:"policyList"`
}

// UpstreamPolicy is one raw record as the portal emits it. Field names
// follow the upstream schema; the pipeline normalizes them into
// types.Policy and keeps the raw record in the detail blob.
type UpstreamPolicy struct {
	BizID        string `json:"bizId"`
	Title        string `json:"polyBizSjnm"`
	Summary      string `json:"polyItcnCn"`
	CategoryCode string `json:"polyRlmCd"`
	Locality     string `json:"mngtMson"`
	ApplyPeriod  string `json:"rqutPrdCn"`
	ApplyURL     string `json:"rqutUrla"`
	DetailURL    string `json:"rfcSiteUrla1"`
}

// BuildListURL constructs the list endpoint URL for the given page. The
// health monitor reuses it with pageSize=1 for probes.
func BuildListURL(baseURL string, apiKey types.SecretString, pageIndex, pageSize int) string {
	q := url.Values{}
	q.Set("openApiVlak", apiKey.Unmask())
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("display", strconv.Itoa(pageSize))
	return baseURL + "?" + q.Encode()
}

// UpstreamClient fetches policy pages from the portal through the
// resilient external.Client (list reads are idempotent, so retries on
// transient upstream errors are safe).
type UpstreamClient struct {
	baseURL  string
	apiKey   types.SecretString
	pageSize int
	client   *external.Client
}

// NewUpstreamClient creates an UpstreamClient.
func NewUpstreamClient(baseURL string, apiKey types.SecretString, pageSize int, timeout time.Duration) *UpstreamClient {
	return &UpstreamClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		client:   external.NewClient(&http.Client{Timeout: timeout}, "youthcenter", external.DefaultRetryPolicy()),
	}
}

// PageSize returns the configured page size.
func (c *UpstreamClient) PageSize() int { return c.pageSize }

// FetchPage retrieves one page. Any non-2xx response or JSON decode
// failure is a page-fetch error: the pipeline aborts the whole run on it.
func (c *UpstreamClient) FetchPage(ctx context.Context, pageIndex int) (*PolicyPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		BuildListURL(c.baseURL, c.apiKey, pageIndex, c.pageSize), nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("upstream returned %d for page %d", resp.StatusCode, pageIndex),
			nil,
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "reading upstream response", err)
	}

	var page PolicyPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamBadPayload, "decoding upstream response", err)
	}

	return &page, nil
}
