// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runetrics/runetrics/internal/metrics"
	"github.com/runetrics/runetrics/internal/models"
)

// InsertGlobalObservations appends one scrape's per-game counts. All rows
// go in one transaction so a scrape is either fully recorded or not at all.
func (db *DB) InsertGlobalObservations(ctx context.Context, obs []models.GlobalObservation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO player_counts (game, player_count, observed_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if !o.Game.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidGame, o.Game)
		}
		if _, err := stmt.ExecContext(ctx, string(o.Game), o.PlayerCount, o.ObservedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert %s count: %w", o.Game, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	metrics.ObservationsInserted.WithLabelValues("player_counts").Add(float64(len(obs)))
	return nil
}

// InsertWorldSnapshot appends one scrape's per-world rows atomically.
// Every row is stamped with the same observed_at; callers pass the scrape
// timestamp explicitly so the set forms one snapshot.
func (db *DB) InsertWorldSnapshot(ctx context.Context, worlds []models.WorldObservation, observedAt time.Time) error {
	if len(worlds) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO world_counts (world, players, location, world_type, activity, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	observedAt = observedAt.UTC()
	for _, w := range worlds {
		activity := CanonicalActivity(w.Activity)
		if _, err := stmt.ExecContext(ctx, w.World, w.Players, w.Location, w.Type, activity, observedAt); err != nil {
			return fmt.Errorf("failed to insert world %s: %w", w.World, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	metrics.ObservationsInserted.WithLabelValues("world_counts").Add(float64(len(worlds)))
	return nil
}

// CanonicalActivity normalizes a world activity label. Blank and "-" cells
// mean the world has no declared activity.
func CanonicalActivity(activity string) string {
	activity = strings.TrimSpace(activity)
	if activity == "" || activity == "-" {
		return models.NoActivity
	}
	return activity
}

// CountObservations returns the total rows in one of the observation
// tables. Used by health checks and tests.
func (db *DB) CountObservations(ctx context.Context, table string) (int64, error) {
	switch table {
	case "player_counts", "world_counts":
	default:
		return 0, fmt.Errorf("unknown observation table %q", table)
	}

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
