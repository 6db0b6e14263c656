// Package catalog derives the time-dependent lifecycle status of policies.
//
// Status is a pure function of the normalized application interval and the
// current time. It is recomputed on every read and never persisted: a
// policy row stores only the interval, so a row written months ago still
// reports the correct status today.
package catalog

import (
	"time"

	"youthpolicy/internal/types"
)

// ClosingSoonWindow is the period immediately preceding a policy's end
// date during which it reports CLOSING_SOON. The same window feeds the
// default notification lead time.
const ClosingSoonWindow = 7 * 24 * time.Hour

// StatusAt derives the lifecycle status of a policy at the given instant.
// Evaluation order, first match wins:
//
//  1. always-open           -> OPEN
//  2. start in the future   -> UPCOMING
//  3. end in the past       -> CLOSED
//  4. end within the window -> CLOSING_SOON (inclusive upper bound)
//  5. otherwise             -> OPEN
//
// A policy with no end date and no always-open flag that has already
// started stays OPEN forever: a missing end date means "unknown deadline",
// not "open forever", but there is no better signal to act on.
func StatusAt(start, end *time.Time, alwaysOpen bool, now time.Time) types.PolicyStatus {
	if alwaysOpen {
		return types.StatusOpen
	}
	if start != nil && start.After(now) {
		return types.StatusUpcoming
	}
	if end != nil {
		if end.Before(now) {
			return types.StatusClosed
		}
		if !end.After(now.Add(ClosingSoonWindow)) {
			return types.StatusClosingSoon
		}
	}
	return types.StatusOpen
}

// Annotate fills the derived Status field on a policy. Callers in the API
// layer use this right before serialization.
func Annotate(p *types.Policy, now time.Time) {
	p.Status = StatusAt(p.StartAt, p.EndAt, p.IsAlwaysOpen, now)
}
