// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package models defines the domain types shared between the store, the
// scraper, and the API layer.
package models

import "time"

// Game identifies which RuneScape title a global observation belongs to.
type Game string

const (
	// GameRS3 is RuneScape 3. Its player count is derived: the combined
	// counter minus the OSRS counter.
	GameRS3 Game = "RS3"

	// GameOSRS is Old School RuneScape.
	GameOSRS Game = "OSRS"
)

// Valid reports whether g is a known game.
func (g Game) Valid() bool {
	return g == GameRS3 || g == GameOSRS
}

// NoActivity is the canonical label for worlds without a declared activity.
// Blank and "-" activity cells are normalized to this at ingest, and
// queries fold stragglers into it defensively.
const NoActivity = "No Activity"

// GlobalObservation is one scraped online-player count for one game.
type GlobalObservation struct {
	ID          int64     `json:"id"`
	Game        Game      `json:"game"`
	PlayerCount int64     `json:"player_count"`
	ObservedAt  time.Time `json:"observed_at"`
}

// WorldObservation is one scraped OSRS world row. All rows scraped in the
// same cycle share one ObservedAt; that shared timestamp is what makes a
// set of rows a snapshot.
type WorldObservation struct {
	ID         int64     `json:"id"`
	World      string    `json:"world"`
	Players    int64     `json:"players"`
	Location   string    `json:"location"`
	Type       string    `json:"type"`
	Activity   string    `json:"activity"`
	ObservedAt time.Time `json:"observed_at"`
}
