// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package models

// SeriesPoint is one time bucket of an aggregated player-count series.
// Bucket keys are zero-padded strings whose lexicographic order equals
// chronological order ("2024-03-05 14:00:00", "2024-03-05", "2024-10", ...).
type SeriesPoint struct {
	Bucket  string  `json:"bucket"`
	Players float64 `json:"players"`
}

// TypeSeriesPoint is one bucket of the by-world-type breakdown.
// Players is the SUM across worlds of that type in the bucket.
type TypeSeriesPoint struct {
	Bucket  string  `json:"bucket"`
	Type    string  `json:"type"`
	Players float64 `json:"players"`
}

// RegionSeriesPoint is one bucket of the by-region breakdown.
// Players is the SUM across worlds in that region in the bucket.
type RegionSeriesPoint struct {
	Bucket   string  `json:"bucket"`
	Location string  `json:"location"`
	Players  float64 `json:"players"`
}

// ActivityTotal is the whole-range total for one world activity.
type ActivityTotal struct {
	Activity     string `json:"activity"`
	TotalPlayers int64  `json:"total_players"`
	Observations int64  `json:"observations"`
}

// YesterdayReport summarizes the previous UTC day's OSRS worlds, split into
// free-to-play and members sides.
type YesterdayReport struct {
	Date           string  `json:"date"`
	FreeTotal      int64   `json:"free_total"`
	MembersTotal   int64   `json:"members_total"`
	FreeAverage    float64 `json:"free_average"`
	MembersAverage float64 `json:"members_average"`
	PeakPlayers    int64   `json:"peak_players"`
}
