// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"fmt"
	"time"
)

// Granularity is the width of a time bucket in aggregated series.
type Granularity string

const (
	GranularityFiveMin    Granularity = "5min"
	GranularityFifteenMin Granularity = "15min"
	GranularityThirtyMin  Granularity = "30min"
	GranularityHourly     Granularity = "hourly"
	GranularityDaily      Granularity = "daily"
	GranularityWeekly     Granularity = "weekly"
	GranularityMonthly    Granularity = "monthly"
)

// Granularities lists all valid granularities.
var Granularities = []Granularity{
	GranularityFiveMin,
	GranularityFifteenMin,
	GranularityThirtyMin,
	GranularityHourly,
	GranularityDaily,
	GranularityWeekly,
	GranularityMonthly,
}

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityFiveMin, GranularityFifteenMin, GranularityThirtyMin,
		GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// subHourWidth returns the bucket width in minutes for sub-hour
// granularities, or 0 for everything else.
func (g Granularity) subHourWidth() int {
	switch g {
	case GranularityFiveMin:
		return 5
	case GranularityFifteenMin:
		return 15
	case GranularityThirtyMin:
		return 30
	}
	return 0
}

// BucketKey maps a timestamp to its bucket key string. Keys are zero-padded
// so that lexicographic order equals chronological order:
//
//	hourly   "2024-03-05 14:00:00"
//	daily    "2024-03-05"
//	weekly   "2024-10"   (Monday-based week number, week 00 before the
//	                      year's first Monday)
//	monthly  "2024-03"
//	5/15/30min "2024-03-05 14:35:00" (minute truncated to the bucket width)
//
// The SQL produced by bucketSQL yields identical keys; the two must stay in
// lockstep. An unknown granularity is a programming error and panics.
func (g Granularity) BucketKey(t time.Time) string {
	switch g {
	case GranularityFiveMin, GranularityFifteenMin, GranularityThirtyMin:
		w := g.subHourWidth()
		minute := t.Minute() / w * w
		return fmt.Sprintf("%s %02d:%02d:00", t.Format("2006-01-02"), t.Hour(), minute)
	case GranularityHourly:
		return fmt.Sprintf("%s %02d:00:00", t.Format("2006-01-02"), t.Hour())
	case GranularityDaily:
		return t.Format("2006-01-02")
	case GranularityWeekly:
		return fmt.Sprintf("%04d-%02d", t.Year(), mondayWeek(t))
	case GranularityMonthly:
		return t.Format("2006-01")
	}
	panic(fmt.Sprintf("unknown granularity %q", string(g)))
}

// mondayWeek returns the Monday-based week number of the year (strftime %W):
// week 01 starts at the first Monday of the year, days before it are week 00.
func mondayWeek(t time.Time) int {
	yday := t.YearDay() - 1                    // 0-based day of year
	wday := (int(t.Weekday()) + 6) % 7         // Monday=0 .. Sunday=6
	return (yday - wday + 7) / 7
}

// bucketSQL returns a DuckDB expression computing the bucket key for the
// given timestamp column. Must produce exactly the keys of BucketKey.
func bucketSQL(column string, g Granularity) (string, error) {
	if w := g.subHourWidth(); w > 0 {
		// Truncate the minute to the bucket width; lpad keeps the key
		// sortable.
		return fmt.Sprintf(
			"strftime(%s, '%%Y-%%m-%%d %%H:') || lpad(CAST((minute(%s) // %d) * %d AS VARCHAR), 2, '0') || ':00'",
			column, column, w, w), nil
	}

	switch g {
	case GranularityHourly:
		return fmt.Sprintf("strftime(%s, '%%Y-%%m-%%d %%H:00:00')", column), nil
	case GranularityDaily:
		return fmt.Sprintf("strftime(%s, '%%Y-%%m-%%d')", column), nil
	case GranularityWeekly:
		return fmt.Sprintf("strftime(%s, '%%Y-%%W')", column), nil
	case GranularityMonthly:
		return fmt.Sprintf("strftime(%s, '%%Y-%%m')", column), nil
	default:
		return "", ErrInvalidGranularity
	}
}

// Aggregation selects how observations within a bucket collapse to one value.
type Aggregation string

const (
	// AggregationAverage is the mean player count over the bucket.
	AggregationAverage Aggregation = "average"

	// AggregationPeak is the maximum player count seen in the bucket.
	AggregationPeak Aggregation = "peak"
)

// Valid reports whether a is a known aggregation mode.
func (a Aggregation) Valid() bool {
	return a == AggregationAverage || a == AggregationPeak
}

// aggSQL returns the SQL aggregate function for the mode.
func aggSQL(a Aggregation) (string, error) {
	switch a {
	case AggregationAverage:
		return "AVG", nil
	case AggregationPeak:
		return "MAX", nil
	default:
		return "", ErrInvalidAggregation
	}
}
