package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"youthpolicy/internal/types"
)

// PolicyRepository provides data access for the policies table.
type PolicyRepository struct {
	db DBTX
}

// NewPolicyRepository creates a PolicyRepository backed by the given
// database connection (pool or transaction).
func NewPolicyRepository(db DBTX) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// policyColumns is the standard column set for policy queries.
const policyColumns = `p.id, p.title, p.summary, p.category, p.region,
	p.start_at, p.end_at, p.is_always_open, p.apply_url, p.detail,
	p.created_at, p.updated_at`

// Upsert inserts or overwrites the policy keyed by its external id as a
// single conditional write. ON CONFLICT makes the operation atomic under
// concurrent runs; a read-then-branch sequence would not be. The returned
// flag reports whether a new row was created (xmax = 0 only holds for
// freshly inserted tuples).
//
// created_at is preserved on the update path; updated_at always moves.
func (r *PolicyRepository) Upsert(ctx context.Context, p *types.Policy) (bool, error) {
	var inserted bool
	err := r.db.QueryRow(ctx,
		`INSERT INTO policies
		 (id, title, summary, category, region, start_at, end_at,
		  is_always_open, apply_url, detail, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   summary = EXCLUDED.summary,
		   category = EXCLUDED.category,
		   region = EXCLUDED.region,
		   start_at = EXCLUDED.start_at,
		   end_at = EXCLUDED.end_at,
		   is_always_open = EXCLUDED.is_always_open,
		   apply_url = EXCLUDED.apply_url,
		   detail = EXCLUDED.detail,
		   updated_at = NOW()
		 RETURNING (xmax = 0)`,
		p.ID,
		p.Title,
		p.Summary,
		string(p.Category),
		string(p.Region),
		p.StartAt,
		p.EndAt,
		p.IsAlwaysOpen,
		p.ApplyURL,
		p.Detail,
	).Scan(&inserted)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to upsert policy", err)
	}
	return inserted, nil
}

// GetByID fetches a single policy.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*types.Policy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policies p WHERE p.id = $1`, id)

	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPolicy, "policy not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch policy", err)
	}
	return p, nil
}

// ListPoliciesParams defines filtering and pagination for List. Category
// and Region filter when non-empty; status filtering happens in the API
// layer because status is derived, never stored.
type ListPoliciesParams struct {
	Category string
	Region   string
	Limit    int
	Offset   int
}

// List page size bounds.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// NormalizeLimit clamps a requested page size to the allowed range. The
// API handler applies it before querying so the echoed limit matches the
// one actually used.
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}
	return limit
}

// List returns policies ordered by nearest deadline first: rows with an
// end date ascending, then open-ended and always-open rows by recency.
func (r *PolicyRepository) List(ctx context.Context, params ListPoliciesParams) ([]*types.Policy, error) {
	limit := NormalizeLimit(params.Limit)

	rows, err := r.db.Query(ctx,
		`SELECT `+policyColumns+`
		 FROM policies p
		 WHERE ($1 = '' OR p.category = $1)
		   AND ($2 = '' OR p.region = $2)
		 ORDER BY p.end_at ASC NULLS LAST, p.updated_at DESC
		 LIMIT $3 OFFSET $4`,
		params.Category, params.Region, limit, params.Offset)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list policies", err)
	}
	defer rows.Close()

	var policies []*types.Policy
	for rows.Next() {
		// pgx.Rows satisfies pgx.Row, so the single-row scanner applies.
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan policy", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate policies", err)
	}
	return policies, nil
}

// scanPolicy scans a single policy row. Column order must match
// policyColumns.
func scanPolicy(row pgx.Row) (*types.Policy, error) {
	var p types.Policy
	var (
		category string
		region   string
		summary  *string
		startAt  *time.Time
		endAt    *time.Time
		applyURL *string
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&summary,
		&category,
		&region,
		&startAt,
		&endAt,
		&p.IsAlwaysOpen,
		&applyURL,
		&p.Detail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Category = types.Category(category)
	p.Region = types.Region(region)
	p.Summary = summary
	p.StartAt = startAt
	p.EndAt = endAt
	p.ApplyURL = applyURL
	return &p, nil
}
