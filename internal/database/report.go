// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/runetrics/runetrics/internal/metrics"
	"github.com/runetrics/runetrics/internal/models"
)

// YesterdayReport summarizes the previous UTC day's OSRS world observations:
// free vs members totals and averages (classified by the world_type label),
// plus the day's peak combined online count from player_counts.
func (db *DB) YesterdayReport(ctx context.Context, now time.Time) (*models.YesterdayReport, error) {
	defer metrics.ObserveQuery("yesterday_report", time.Now())

	day := now.UTC().AddDate(0, 0, -1)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	report := &models.YesterdayReport{Date: start.Format("2006-01-02")}

	// Per-snapshot free/members totals, averaged over the day's snapshots.
	// A world is "members" when its type label contains Members.
	row := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(CAST(SUM(free) AS BIGINT), 0),
		        COALESCE(CAST(SUM(members) AS BIGINT), 0),
		        COALESCE(AVG(free), 0),
		        COALESCE(AVG(members), 0)
		 FROM (
			SELECT observed_at,
			       CAST(SUM(CASE WHEN world_type LIKE '%Members%' THEN 0 ELSE players END) AS BIGINT) AS free,
			       CAST(SUM(CASE WHEN world_type LIKE '%Members%' THEN players ELSE 0 END) AS BIGINT) AS members
			FROM world_counts
			WHERE observed_at >= ? AND observed_at < ?
			GROUP BY observed_at
		 )`, start, end)
	if err := row.Scan(&report.FreeTotal, &report.MembersTotal,
		&report.FreeAverage, &report.MembersAverage); err != nil {
		return nil, fmt.Errorf("failed to query world totals: %w", err)
	}

	// Peak combined online count for the same day.
	row = db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(CAST(MAX(total) AS BIGINT), 0) FROM (
			SELECT CAST(SUM(player_count) AS BIGINT) AS total
			FROM player_counts
			WHERE observed_at >= ? AND observed_at < ?
			GROUP BY observed_at
		 )`, start, end)
	if err := row.Scan(&report.PeakPlayers); err != nil {
		return nil, fmt.Errorf("failed to query peak players: %w", err)
	}

	return report, nil
}
