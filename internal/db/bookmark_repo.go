package db

import (
	"context"
	"time"

	"youthpolicy/internal/types"
)

// BookmarkRepository provides data access for the bookmarks table and the
// closing-soon eligibility query that joins bookmarks, policies, and user
// push tokens.
type BookmarkRepository struct {
	db DBTX
}

// NewBookmarkRepository creates a BookmarkRepository.
func NewBookmarkRepository(db DBTX) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create inserts a bookmark. An existing (user, policy) pair is a
// conflict, reported as an AppError rather than silently ignored so the
// API can return 409.
func (r *BookmarkRepository) Create(ctx context.Context, b *types.Bookmark) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO bookmarks (user_id, policy_id, notify_before_days, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, policy_id) DO NOTHING`,
		b.UserID, b.PolicyID, b.NotifyBeforeDays)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create bookmark", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictBookmark, "bookmark already exists", nil)
	}
	return nil
}

// Delete removes a bookmark. A missing pair is reported as not found.
func (r *BookmarkRepository) Delete(ctx context.Context, userID, policyID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND policy_id = $2`,
		userID, policyID)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete bookmark", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundBookmark, "bookmark not found", nil)
	}
	return nil
}

// ListByUser returns the user's bookmarks joined with their policies,
// newest bookmark first.
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID string) ([]types.BookmarkedPolicy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.user_id, b.policy_id, b.notify_before_days, b.created_at,
		        `+policyColumns+`
		 FROM bookmarks b
		 JOIN policies p ON p.id = b.policy_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list bookmarks", err)
	}
	defer rows.Close()

	var items []types.BookmarkedPolicy
	for rows.Next() {
		var item types.BookmarkedPolicy
		var (
			category string
			region   string
		)
		err := rows.Scan(
			&item.Bookmark.UserID,
			&item.Bookmark.PolicyID,
			&item.Bookmark.NotifyBeforeDays,
			&item.Bookmark.CreatedAt,
			&item.Policy.ID,
			&item.Policy.Title,
			&item.Policy.Summary,
			&category,
			&region,
			&item.Policy.StartAt,
			&item.Policy.EndAt,
			&item.Policy.IsAlwaysOpen,
			&item.Policy.ApplyURL,
			&item.Policy.Detail,
			&item.Policy.CreatedAt,
			&item.Policy.UpdatedAt,
		)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan bookmark", err)
		}
		item.Policy.Category = types.Category(category)
		item.Policy.Region = types.Region(region)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate bookmarks", err)
	}
	return items, nil
}

// ClosingSoonTargets returns every (policy, user) pair eligible for a
// closing-soon notification at the given instant. Eligibility is evaluated
// per bookmark: the policy's end date must fall inside
// (now, now + notify_before_days]. Always-open policies, policies with no
// end date, already-closed policies, and users without a push token are
// all excluded in SQL. maxLeadDays caps runaway per-bookmark lead times.
func (r *BookmarkRepository) ClosingSoonTargets(ctx context.Context, now time.Time, maxLeadDays int) ([]types.ClosingSoonTarget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.title, p.end_at, b.user_id, u.push_token
		 FROM bookmarks b
		 JOIN policies p ON p.id = b.policy_id
		 JOIN users u ON u.id = b.user_id
		 WHERE p.is_always_open = FALSE
		   AND p.end_at IS NOT NULL
		   AND p.end_at > $1
		   AND p.end_at <= $1 + make_interval(days => LEAST(b.notify_before_days, $2))
		   AND COALESCE(u.push_token, '') <> ''
		 ORDER BY p.end_at ASC, b.user_id`,
		now, maxLeadDays)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query closing-soon targets", err)
	}
	defer rows.Close()

	var targets []types.ClosingSoonTarget
	for rows.Next() {
		var t types.ClosingSoonTarget
		if err := rows.Scan(&t.PolicyID, &t.Title, &t.EndAt, &t.UserID, &t.PushToken); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan closing-soon target", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate closing-soon targets", err)
	}
	return targets, nil
}
