// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import "errors"

var (
	// ErrInvalidGranularity is returned when a series query names an
	// unknown time granularity.
	ErrInvalidGranularity = errors.New("invalid granularity: must be 5min, 15min, 30min, hourly, daily, weekly, or monthly")

	// ErrInvalidAggregation is returned when a series query names an
	// unknown aggregation mode.
	ErrInvalidAggregation = errors.New("invalid aggregation: must be average or peak")

	// ErrInvalidGame is returned when a query names an unknown game.
	ErrInvalidGame = errors.New("invalid game: must be RS3 or OSRS")
)
