// Package timeframe resolves the dashboard's symbolic time-range selectors
// into concrete timestamp windows and renders them as store conditions.
package timeframe

import "time"

// DayBucketFormat is the calendar-day grouping key format used by all
// time-series metrics, in UTC.
const DayBucketFormat = "2006-01-02"

// Window is a resolved timestamp interval. From is always inclusive.
// Inclusive controls whether To itself is part of the window; half-open
// windows (Inclusive=false) exclude it. An Unbounded window matches every
// record, which is the documented fallback for unrecognized selectors and
// incomplete custom ranges.
type Window struct {
	From      time.Time
	To        time.Time
	Inclusive bool
	Unbounded bool
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Unbounded {
		return true
	}
	if t.Before(w.From) {
		return false
	}
	if w.Inclusive {
		return !t.After(w.To)
	}
	return t.Before(w.To)
}

// Condition renders the window as a SQL condition on the given timestamp
// column. Unbounded windows render to an empty condition (no filtering).
func (w Window) Condition(column string) (string, []any) {
	if w.Unbounded {
		return "", nil
	}
	if w.Inclusive {
		return column + " >= ? AND " + column + " <= ?", []any{w.From, w.To}
	}
	return column + " >= ? AND " + column + " < ?", []any{w.From, w.To}
}

// BucketKey formats a timestamp as its UTC calendar-day grouping key.
func BucketKey(t time.Time) string {
	return t.UTC().Format(DayBucketFormat)
}
