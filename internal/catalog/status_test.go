package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"youthpolicy/internal/types"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) *time.Time { return &t }

func TestStatusAt(t *testing.T) {
	tests := []struct {
		name       string
		start, end *time.Time
		alwaysOpen bool
		want       types.PolicyStatus
	}{
		{
			name:       "always open is OPEN regardless of dates",
			start:      ts(now.Add(24 * time.Hour)),
			end:        ts(now.Add(-24 * time.Hour)),
			alwaysOpen: true,
			want:       types.StatusOpen,
		},
		{
			name:  "start in the future is UPCOMING",
			start: ts(now.Add(48 * time.Hour)),
			end:   ts(now.Add(30 * 24 * time.Hour)),
			want:  types.StatusUpcoming,
		},
		{
			name: "end in the past is CLOSED",
			end:  ts(now.Add(-time.Minute)),
			want: types.StatusClosed,
		},
		{
			name: "end inside the window is CLOSING_SOON",
			end:  ts(now.Add(3 * 24 * time.Hour)),
			want: types.StatusClosingSoon,
		},
		{
			name: "end exactly on the window boundary is CLOSING_SOON",
			end:  ts(now.Add(ClosingSoonWindow)),
			want: types.StatusClosingSoon,
		},
		{
			name: "end just past the window is OPEN",
			end:  ts(now.Add(ClosingSoonWindow + time.Second)),
			want: types.StatusOpen,
		},
		{
			name: "end equal to now is CLOSING_SOON not CLOSED",
			end:  ts(now),
			want: types.StatusClosingSoon,
		},
		{
			name:  "started with far deadline is OPEN",
			start: ts(now.Add(-30 * 24 * time.Hour)),
			end:   ts(now.Add(60 * 24 * time.Hour)),
			want:  types.StatusOpen,
		},
		{
			name: "no dates and not always open is OPEN",
			want: types.StatusOpen,
		},
		{
			name:  "started with no end date stays OPEN",
			start: ts(now.Add(-24 * time.Hour)),
			want:  types.StatusOpen,
		},
		{
			name: "end-only range already started",
			end:  ts(now.Add(20 * 24 * time.Hour)),
			want: types.StatusOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusAt(tt.start, tt.end, tt.alwaysOpen, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusAt_UpcomingBeatsClosed(t *testing.T) {
	// A future start with an (inconsistent) past end reports UPCOMING: the
	// first matching rule wins.
	got := StatusAt(ts(now.Add(24*time.Hour)), ts(now.Add(-24*time.Hour)), false, now)
	assert.Equal(t, types.StatusUpcoming, got)
}

func TestAnnotate(t *testing.T) {
	p := &types.Policy{EndAt: ts(now.Add(2 * 24 * time.Hour))}
	Annotate(p, now)
	assert.Equal(t, types.StatusClosingSoon, p.Status)

	p = &types.Policy{IsAlwaysOpen: true}
	Annotate(p, now)
	assert.Equal(t, types.StatusOpen, p.Status)
}
