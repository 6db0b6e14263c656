// pipeline.go implements the scheduled ingestion run: paginate the
// upstream API, normalize each record, upsert into the store.
//
// Failure isolation is deliberately asymmetric. A page-fetch failure means
// the upstream is unavailable, so the run aborts immediately with the
// counts accumulated so far (retrying the whole run later is cheap). A bad
// record is a data-quality issue scoped to one entity: it is counted and
// skipped, and the run continues.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"youthpolicy/internal/metrics"
	"youthpolicy/internal/types"
)

// PageFetcher abstracts the upstream list API for the pipeline.
// Implemented by UpstreamClient; tests inject a fake.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageIndex int) (*PolicyPage, error)
	PageSize() int
}

// PolicyWriter abstracts the store operations the pipeline needs.
type PolicyWriter interface {
	// Upsert inserts or overwrites the policy keyed by its external id,
	// reporting whether a new row was created.
	Upsert(ctx context.Context, p *types.Policy) (inserted bool, err error)
}

// Syncer runs one ingestion pass over the upstream catalog. Row timestamps
// are set by the store (SQL NOW()), so the Syncer itself never reads the
// clock.
type Syncer struct {
	apiKey  types.SecretString
	fetcher PageFetcher
	store   PolicyWriter
	regions *RegionResolver
	logger  *slog.Logger
}

// SyncerConfig holds the dependencies for creating a Syncer.
type SyncerConfig struct {
	APIKey  types.SecretString
	Fetcher PageFetcher
	Store   PolicyWriter
	Regions *RegionResolver
	Logger  *slog.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(cfg SyncerConfig) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		apiKey:  cfg.APIKey,
		fetcher: cfg.Fetcher,
		store:   cfg.Store,
		regions: cfg.Regions,
		logger:  logger,
	}
}

// Sync executes one full catalog pass. A missing API key is a precondition
// failure returned as an error before any network activity. Page-fetch
// failures abort the run and are reported inside the result (Success=false,
// partial counts preserved), not as a returned error. Per-record failures
// only increment the Errors counter.
//
// Re-running Sync against an unchanged upstream payload is idempotent:
// every record takes the update path and no net data change occurs beyond
// timestamp churn.
func (s *Syncer) Sync(ctx context.Context) (types.SyncResult, error) {
	if s.apiKey.IsZero() {
		metrics.SyncRuns.WithLabelValues("precondition_failed").Inc()
		return types.SyncResult{}, types.NewAppError(
			types.ErrCodePreconditionCredentials,
			"upstream API key is not configured",
			nil,
		)
	}

	var result types.SyncResult
	pageSize := s.fetcher.PageSize()

	for pageIndex := 1; ; pageIndex++ {
		page, err := s.fetcher.FetchPage(ctx, pageIndex)
		if err != nil {
			s.logger.ErrorContext(ctx, "page fetch failed, aborting run",
				"page", pageIndex,
				"error", err,
			)
			metrics.SyncRuns.WithLabelValues("aborted").Inc()
			result.Success = false
			result.Error = err.Error()
			return result, nil
		}

		if len(page.Policies) == 0 {
			break
		}

		for i := range page.Policies {
			result.Total++
			rec := &page.Policies[i]

			policy, err := s.normalize(rec)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping invalid record",
					"page", pageIndex,
					"error", err,
				)
				metrics.SyncRecords.WithLabelValues(metrics.OutcomeError).Inc()
				result.Errors++
				continue
			}

			inserted, err := s.store.Upsert(ctx, policy)
			if err != nil {
				s.logger.WarnContext(ctx, "upsert failed, skipping record",
					"policy_id", policy.ID,
					"error", err,
				)
				metrics.SyncRecords.WithLabelValues(metrics.OutcomeError).Inc()
				result.Errors++
				continue
			}
			if inserted {
				metrics.SyncRecords.WithLabelValues(metrics.OutcomeInserted).Inc()
				result.Inserted++
			} else {
				metrics.SyncRecords.WithLabelValues(metrics.OutcomeUpdated).Inc()
				result.Updated++
			}
		}

		// 1-based pagination: stop once this page covered the tail of the
		// reported total.
		if pageIndex*pageSize >= page.TotalCount {
			break
		}
	}

	result.Success = true
	metrics.SyncRuns.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "sync complete",
		"total", result.Total,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"errors", result.Errors,
	)
	return result, nil
}

// normalize validates a raw record and maps it onto the canonical schema.
// The external id and title are the only hard requirements; everything
// else degrades to "unknown" rather than failing the record.
func (s *Syncer) normalize(rec *UpstreamPolicy) (*types.Policy, error) {
	id := strings.TrimSpace(rec.BizID)
	if id == "" {
		return nil, fmt.Errorf("record missing external id")
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return nil, fmt.Errorf("record %s missing title", id)
	}

	interval := ParseDateRange(rec.ApplyPeriod)

	p := &types.Policy{
		ID:           id,
		Title:        title,
		Category:     CategoryFromCode(rec.CategoryCode),
		Region:       s.regions.Resolve(rec.Locality),
		StartAt:      interval.Start,
		EndAt:        interval.End,
		IsAlwaysOpen: interval.AlwaysOpen,
	}

	if summary := strings.TrimSpace(rec.Summary); summary != "" {
		p.Summary = &summary
	}
	if applyURL := strings.TrimSpace(rec.ApplyURL); applyURL != "" && applyURL != "-" {
		p.ApplyURL = &applyURL
	}

	// Keep the raw upstream record as the opaque detail blob.
	if detail, err := json.Marshal(rec); err == nil {
		p.Detail = detail
	}

	return p, nil
}
