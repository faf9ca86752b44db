// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/runetrics/runetrics/internal/models"
)

// LatestWorldTimestamp returns the most recent world snapshot timestamp.
// The bool is false when the store holds no world observations.
func (db *DB) LatestWorldTimestamp(ctx context.Context) (time.Time, bool, error) {
	var ts sql.NullTime
	err := db.conn.QueryRowContext(ctx,
		`SELECT MAX(observed_at) FROM world_counts`).Scan(&ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to resolve latest snapshot: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}

// WorldSnapshot returns all world rows observed at exactly the given
// timestamp, ordered by players descending. A nil timestamp resolves to the
// most recent snapshot. A timestamp with no exact match (or an empty store)
// yields an empty result, not an error: the caller asked for a snapshot
// that does not exist, and nearest-match guessing would misrepresent the
// data.
func (db *DB) WorldSnapshot(ctx context.Context, at *time.Time) ([]models.WorldObservation, error) {
	if at == nil {
		latest, ok, err := db.LatestWorldTimestamp(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		at = &latest
	}

	query := `SELECT id, world, players, location, world_type, activity, observed_at
		 FROM world_counts
		 WHERE observed_at = ?
		 ORDER BY players DESC, world`
	args := []interface{}{at.UTC()}

	return queryAndScan(ctx, db.conn, "world_snapshot", query, args,
		func(rows *sql.Rows) (models.WorldObservation, error) {
			var w models.WorldObservation
			err := rows.Scan(&w.ID, &w.World, &w.Players, &w.Location, &w.Type, &w.Activity, &w.ObservedAt)
			return w, err
		})
}
