// Package ingest implements the policy ingestion pipeline: fetching pages
// from the government youth-policy API, normalizing each record into the
// canonical schema, and upserting into the store.
//
// This file implements the interval parser. Upstream application-period
// strings are unstructured portal copy ("2024.01.01~2024.12.31", "상시모집",
// "2024년 3월 ~ 예산 소진시", ...), so the parser is permissive: it never
// returns an error, and a date it cannot extract becomes nil ("unknown"),
// which the caller must not treat as a failure.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is the normalized application interval of a policy.
// Start/End are nil when the corresponding side could not be extracted.
// AlwaysOpen true means the policy has no fixed deadline; the nil/nil/false
// combination is the distinct "no information" case.
type DateRange struct {
	Start      *time.Time
	End        *time.Time
	AlwaysOpen bool
}

// nonDeadlineKeywords are markers that disqualify a string from being a
// concrete date. ParseDate rejects any input containing one of these before
// attempting numeric parsing, even if a syntactically valid date also
// appears in the string.
var nonDeadlineKeywords = []string{
	"상시",
	"수시",
	"연중",
	"소진",
	"마감시",
}

// alwaysOpenPhrases is the broader set of whole-range phrases that mark a
// policy as always open. Checked against the full range string before any
// date extraction, and takes precedence over literal dates in the text.
var alwaysOpenPhrases = []string{
	"상시",
	"수시",
	"연중",
	"상시모집",
	"연중모집",
	"마감시",
	"예산 소진",
	"예산소진",
	"별도 공지",
	"채용시",
}

// rangeSeparators are the characters that split a period string into a
// start and an end segment. The plain hyphen is NOT a range separator
// because it doubles as a date separator (2024-01-01).
var rangeSeparators = []string{"~", "∼", "～", "〜"}

// datePattern matches the four supported literal forms plus the year-month
// form: 2024.01.05, 2024-01-05, 2024/01/05, 2024년 1월 5일, 2024.01.
// The day group is optional; a missing day defaults to the 1st.
var datePattern = regexp.MustCompile(`(\d{4})\s*[.\-/년]\s*(\d{1,2})(?:\s*[.\-/월]\s*(\d{1,2}))?`)

// ParseDate extracts a single calendar date from free text and returns it
// as midnight UTC. The boolean is false when no valid date is present.
//
// The constructed date is validated by round-tripping through time.Date:
// Go normalizes out-of-range components (month 13 becomes January of the
// next year), so any input whose normalized components differ from the
// parsed ones is rejected rather than silently shifted.
func ParseDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, kw := range nonDeadlineKeywords {
		if strings.Contains(trimmed, kw) {
			return time.Time{}, false
		}
	}

	matches := datePattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	day := 1
	if matches[3] != "" {
		day, _ = strconv.Atoi(matches[3])
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}

// ParseDateRange normalizes a free-text application-period string into a
// DateRange.
//
// Order of evaluation:
//  1. Whole-string always-open phrase check. A match returns
//     {nil, nil, true} unconditionally, even if literal dates also appear.
//  2. Range separator scan. When found, the two segments are parsed
//     independently; an unparsable segment yields nil for that side only,
//     so partial ranges ("start only") are valid output.
//  3. No separator: the whole string is parsed as a single date used for
//     both sides (a lone deadline is a zero-width window).
//
// Empty or fully unparsable input yields {nil, nil, false}.
func ParseDateRange(text string) DateRange {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return DateRange{}
	}

	for _, phrase := range alwaysOpenPhrases {
		if strings.Contains(trimmed, phrase) {
			return DateRange{AlwaysOpen: true}
		}
	}

	for _, sep := range rangeSeparators {
		idx := strings.Index(trimmed, sep)
		if idx < 0 {
			continue
		}

		var start, end *time.Time
		if s, ok := ParseDate(trimmed[:idx]); ok {
			start = &s
		}
		if e, ok := ParseDate(trimmed[idx+len(sep):]); ok {
			end = &e
		}
		// The parser must never emit an inverted interval; upstream copy
		// occasionally lists the dates backwards.
		if start != nil && end != nil && start.After(*end) {
			start, end = end, start
		}
		return DateRange{Start: start, End: end}
	}

	if d, ok := ParseDate(trimmed); ok {
		return DateRange{Start: &d, End: &d}
	}

	return DateRange{}
}
