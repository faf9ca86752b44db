// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import "fmt"

// getSchemaStatements returns the DDL executed at startup, in order.
// Everything is IF NOT EXISTS so startup is idempotent.
//
// player_counts holds one row per game per scrape; world_counts holds one
// row per OSRS world per scrape. Both are append-only: the service never
// updates or deletes observations.
func getSchemaStatements() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_player_counts START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_world_counts START 1`,
		`CREATE TABLE IF NOT EXISTS player_counts (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_player_counts'),
			game VARCHAR NOT NULL,
			player_count BIGINT NOT NULL,
			observed_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS world_counts (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_world_counts'),
			world VARCHAR NOT NULL,
			players BIGINT NOT NULL,
			location VARCHAR NOT NULL DEFAULT '',
			world_type VARCHAR NOT NULL DEFAULT '',
			activity VARCHAR NOT NULL DEFAULT 'No Activity',
			observed_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_player_counts_game_time
			ON player_counts (game, observed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_player_counts_time
			ON player_counts (observed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_world_counts_world_time
			ON world_counts (world, observed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_world_counts_time
			ON world_counts (observed_at)`,
	}
}

// createSchema runs all schema statements with the schema timeout.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, stmt := range getSchemaStatements() {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
