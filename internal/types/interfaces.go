package types

import "time"

// Clock abstracts time for testability. Status derivation, closing-soon
// eligibility, and health-sample timestamps all go through a Clock so
// tests can pin "now".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock implements Clock with a pinned instant. Test helper.
type FixedClock struct{ T time.Time }

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time { return c.T }
