package timeframe

import "time"

// RangeLabel represents the available time range selectors.
type RangeLabel string

const (
	RangeLabelToday     RangeLabel = "today"
	RangeLabelYesterday RangeLabel = "yesterday"
	RangeLabelWeek      RangeLabel = "week"
	RangeLabelLastWeek  RangeLabel = "lastWeek"
	RangeLabelMonth     RangeLabel = "month"
	RangeLabelLastMonth RangeLabel = "lastMonth"
	RangeLabelCustom    RangeLabel = "custom"
)

// Clock supplies the "now" anchor for window resolution. Injecting it keeps
// the resolver a pure function of its inputs, so tests can pin time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by the system wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Resolver maps range labels and optional explicit bounds into Windows.
// All calendar math is done in UTC.
type Resolver struct {
	clock Clock
}

// NewResolver creates a Resolver. Pass a Clock to pin "now" in tests;
// without one the system clock is used.
func NewResolver(clock ...Clock) *Resolver {
	var c Clock = SystemClock{}
	if len(clock) > 0 && clock[0] != nil {
		c = clock[0]
	}
	return &Resolver{clock: c}
}

// Resolve maps a range label plus optional startDate/endDate (YYYY-MM-DD,
// only honored for the custom label) into a Window anchored at the
// resolver's clock.
//
// Bound conventions mirror the dashboard contract exactly: today, yesterday,
// lastWeek and lastMonth are half-open; week, month and custom include their
// upper bound. A custom range covers the full end day. An unrecognized
// label, or a custom range missing either bound, resolves to the unbounded
// window that matches every record, so bad input yields global totals
// rather than an error.
func (r *Resolver) Resolve(label RangeLabel, startDate, endDate string) Window {
	now := r.clock.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch label {
	case RangeLabelToday:
		return Window{From: dayStart, To: dayStart.AddDate(0, 0, 1)}

	case RangeLabelYesterday:
		from := dayStart.AddDate(0, 0, -1)
		return Window{From: from, To: dayStart}

	case RangeLabelWeek:
		return Window{From: now.AddDate(0, 0, -7), To: now, Inclusive: true}

	case RangeLabelLastWeek:
		return Window{From: now.AddDate(0, 0, -14), To: now.AddDate(0, 0, -7)}

	case RangeLabelMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: monthStart, To: now, Inclusive: true}

	case RangeLabelLastMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: monthStart.AddDate(0, -1, 0), To: monthStart}

	case RangeLabelCustom:
		return r.resolveCustom(startDate, endDate)
	}

	return Window{Unbounded: true}
}

// resolveCustom parses explicit bounds. The window spans from the start of
// the start day through the end of the end day; a missing or malformed
// bound fails open to the unbounded window.
func (r *Resolver) resolveCustom(startDate, endDate string) Window {
	if startDate == "" || endDate == "" {
		return Window{Unbounded: true}
	}

	from, err := time.ParseInLocation(DayBucketFormat, startDate, time.UTC)
	if err != nil {
		return Window{Unbounded: true}
	}
	end, err := time.ParseInLocation(DayBucketFormat, endDate, time.UTC)
	if err != nil {
		return Window{Unbounded: true}
	}

	// Upper bound is the end of the requested end day: half-open against the
	// following midnight is equivalent to the inclusive bound the dashboard
	// documents, without sub-second edge cases.
	return Window{From: from, To: end.AddDate(0, 0, 1)}
}
