// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/runetrics/runetrics/internal/database"
	"github.com/runetrics/runetrics/internal/models"
)

// SeriesRequest carries the validated query parameters of a series endpoint.
// Enum fields are validated before they reach the store; the store would
// reject them too, but a 400 with a field name beats a 500.
type SeriesRequest struct {
	Game        string `validate:"omitempty,oneof=RS3 OSRS"`
	Granularity string `validate:"omitempty,oneof=5min 15min 30min hourly daily weekly monthly"`
	Aggregation string `validate:"omitempty,oneof=average peak"`
	Start       time.Time
	End         time.Time
}

// SeriesQuery converts the request into the store's query shape, applying
// the hourly/average defaults for omitted enums.
func (req *SeriesRequest) SeriesQuery() database.SeriesQuery {
	q := database.SeriesQuery{
		Start:       req.Start,
		End:         req.End,
		Granularity: database.GranularityHourly,
		Aggregation: database.AggregationAverage,
	}
	if req.Granularity != "" {
		q.Granularity = database.Granularity(req.Granularity)
	}
	if req.Aggregation != "" {
		q.Aggregation = database.Aggregation(req.Aggregation)
	}
	return q
}

// parseSeriesRequest reads the common series parameters from the query
// string. When neither start nor end is given, the trailing default range
// ending now is used; a lone start or end anchors the other edge with the
// same width.
func (h *Handler) parseSeriesRequest(r *http.Request) (*SeriesRequest, error) {
	req := &SeriesRequest{
		Game:        r.URL.Query().Get("game"),
		Granularity: r.URL.Query().Get("granularity"),
		Aggregation: r.URL.Query().Get("aggregation"),
	}

	start, end, err := h.parseRange(r)
	if err != nil {
		return nil, err
	}
	req.Start = start
	req.End = end

	return req, nil
}

// parseRange resolves the inclusive [start, end] window from the query string.
func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	var (
		start, end time.Time
		err        error
	)

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err = parseTimestamp("start", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err = parseTimestamp("end", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	defaultRange := h.cfg.DefaultRange
	if defaultRange <= 0 {
		defaultRange = 24 * time.Hour
	}

	switch {
	case start.IsZero() && end.IsZero():
		end = time.Now().UTC()
		start = end.Add(-defaultRange)
	case start.IsZero():
		start = end.Add(-defaultRange)
	case end.IsZero():
		end = start.Add(defaultRange)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is not after start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	return start, end, nil
}

// parseTimestamp parses an RFC 3339 query parameter.
func parseTimestamp(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC 3339 (e.g. 2024-03-05T14:00:00Z), got %q", name, raw)
	}
	return t.UTC(), nil
}

// requireGame validates that the game parameter names a known game.
func requireGame(raw string) (models.Game, error) {
	game := models.Game(raw)
	if !game.Valid() {
		return "", fmt.Errorf("game must be RS3 or OSRS, got %q", raw)
	}
	return game, nil
}
