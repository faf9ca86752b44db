// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runetrics/runetrics/internal/models"
)

// scanSeriesPoint scans one (bucket, players) row.
func scanSeriesPoint(rows *sql.Rows) (models.SeriesPoint, error) {
	var p models.SeriesPoint
	err := rows.Scan(&p.Bucket, &p.Players)
	return p, err
}

// GameSeries returns the bucketed player-count series for one game.
// The aggregation mode collapses each bucket's observations to AVG or MAX.
func (db *DB) GameSeries(ctx context.Context, game models.Game, q SeriesQuery) ([]models.SeriesPoint, error) {
	if !game.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGame, game)
	}
	bucket, err := bucketSQL("observed_at", q.Granularity)
	if err != nil {
		return nil, err
	}
	agg, err := aggSQL(q.Aggregation)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder(fmt.Sprintf(
		`SELECT %s AS bucket, CAST(%s(player_count) AS DOUBLE) AS players
		 FROM player_counts WHERE 1=1`, bucket, agg))
	qb.addFilter("game = ?", string(game))
	qb.addRangeFilter("observed_at", q.Start, q.End)
	query, args := qb.build("GROUP BY bucket ORDER BY bucket")

	return queryAndScan(ctx, db.conn, "game_series", query, args, scanSeriesPoint)
}

// CombinedSeries returns the bucketed series of the total population across
// both games. Games are summed within each observation timestamp first,
// then the bucket collapses those totals with AVG or MAX.
func (db *DB) CombinedSeries(ctx context.Context, q SeriesQuery) ([]models.SeriesPoint, error) {
	bucket, err := bucketSQL("observed_at", q.Granularity)
	if err != nil {
		return nil, err
	}
	agg, err := aggSQL(q.Aggregation)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder(fmt.Sprintf(
		`SELECT bucket, CAST(%s(total) AS DOUBLE) AS players FROM (
			SELECT %s AS bucket, observed_at, CAST(SUM(player_count) AS BIGINT) AS total
			FROM player_counts WHERE 1=1`, agg, bucket))
	qb.addRangeFilter("observed_at", q.Start, q.End)
	query, args := qb.build("GROUP BY bucket, observed_at) GROUP BY bucket ORDER BY bucket")

	return queryAndScan(ctx, db.conn, "combined_series", query, args, scanSeriesPoint)
}

// WorldSeries returns the bucketed series for one OSRS world.
func (db *DB) WorldSeries(ctx context.Context, world string, q SeriesQuery) ([]models.SeriesPoint, error) {
	bucket, err := bucketSQL("observed_at", q.Granularity)
	if err != nil {
		return nil, err
	}
	agg, err := aggSQL(q.Aggregation)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder(fmt.Sprintf(
		`SELECT %s AS bucket, CAST(%s(players) AS DOUBLE) AS players
		 FROM world_counts WHERE 1=1`, bucket, agg))
	qb.addFilter("world = ?", world)
	qb.addRangeFilter("observed_at", q.Start, q.End)
	query, args := qb.build("GROUP BY bucket ORDER BY bucket")

	return queryAndScan(ctx, db.conn, "world_series", query, args, scanSeriesPoint)
}

// SeriesByType returns, per bucket per world type, the SUM of players
// across all worlds of that type. Because each bucket value is a sum over
// many worlds, the aggregation mode does not apply here and is ignored.
func (db *DB) SeriesByType(ctx context.Context, q SeriesQuery) ([]models.TypeSeriesPoint, error) {
	bucket, err := bucketSQL("observed_at", q.Granularity)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder(fmt.Sprintf(
		`SELECT %s AS bucket, world_type, CAST(SUM(players) AS DOUBLE) AS players
		 FROM world_counts WHERE 1=1`, bucket))
	qb.addRangeFilter("observed_at", q.Start, q.End)
	query, args := qb.build("GROUP BY bucket, world_type ORDER BY bucket, world_type")

	return queryAndScan(ctx, db.conn, "series_by_type", query, args,
		func(rows *sql.Rows) (models.TypeSeriesPoint, error) {
			var p models.TypeSeriesPoint
			err := rows.Scan(&p.Bucket, &p.Type, &p.Players)
			return p, err
		})
}

// SeriesByRegion returns, per bucket per world location, the SUM of players
// across all worlds in that region. Like SeriesByType, the aggregation mode
// is ignored.
func (db *DB) SeriesByRegion(ctx context.Context, q SeriesQuery) ([]models.RegionSeriesPoint, error) {
	bucket, err := bucketSQL("observed_at", q.Granularity)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder(fmt.Sprintf(
		`SELECT %s AS bucket, location, CAST(SUM(players) AS DOUBLE) AS players
		 FROM world_counts WHERE 1=1`, bucket))
	qb.addRangeFilter("observed_at", q.Start, q.End)
	query, args := qb.build("GROUP BY bucket, location ORDER BY bucket, location")

	return queryAndScan(ctx, db.conn, "series_by_region", query, args,
		func(rows *sql.Rows) (models.RegionSeriesPoint, error) {
			var p models.RegionSeriesPoint
			err := rows.Scan(&p.Bucket, &p.Location, &p.Players)
			return p, err
		})
}

// ActivityTotals returns, for the whole range, the summed players and row
// count per world activity, ordered by total descending. Activities are not
// bucketed. Blank and "-" labels fold into the canonical No Activity group
// even if they slipped past ingest normalization.
func (db *DB) ActivityTotals(ctx context.Context, q SeriesQuery) ([]models.ActivityTotal, error) {
	qb := newQueryBuilder(
		`SELECT CASE WHEN trim(activity) = '' OR activity = '-' THEN 'No Activity' ELSE activity END AS activity,
		        CAST(SUM(players) AS BIGINT) AS total_players,
		        COUNT(*) AS observations
		 FROM world_counts WHERE 1=1`)
	qb.addRangeFilter("observed_at", q.Start, q.End)
	// GROUP BY 1 binds to the CASE expression; a bare "activity" could
	// resolve to the base column and split the folded labels back apart.
	query, args := qb.build("GROUP BY 1 ORDER BY total_players DESC, activity")

	return queryAndScan(ctx, db.conn, "activity_totals", query, args,
		func(rows *sql.Rows) (models.ActivityTotal, error) {
			var a models.ActivityTotal
			err := rows.Scan(&a.Activity, &a.TotalPlayers, &a.Observations)
			return a, err
		})
}
