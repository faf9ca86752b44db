// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/database"
)

// Handler serves the query API over the observation store.
type Handler struct {
	db        *database.DB
	cfg       *config.APIConfig
	version   string
	startTime time.Time

	// lastScrape reports scraper liveness for /health; nil when the
	// scraper is disabled.
	lastScrape func() time.Time
}

// NewHandler creates an API handler.
func NewHandler(db *database.DB, cfg *config.APIConfig, version string) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		version:   version,
		startTime: time.Now(),
	}
}

// SetLastScrapeFunc wires in the scraper's last-success clock for /health.
func (h *Handler) SetLastScrapeFunc(fn func() time.Time) {
	h.lastScrape = fn
}

// Players returns the bucketed series for one game.
//
//	GET /api/v1/players?game=OSRS&start=...&end=...&granularity=hourly&aggregation=peak
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	game, err := requireGame(req.Game)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	start := time.Now()
	points, err := h.db.GameSeries(r.Context(), game, req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query player series", err)
		return
	}

	respondSuccess(w, emptySeries(points), start)
}

// PlayersCombined returns the bucketed series of the total population
// across both games.
func (h *Handler) PlayersCombined(w http.ResponseWriter, r *http.Request) {
	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	points, err := h.db.CombinedSeries(r.Context(), req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query combined series", err)
		return
	}

	respondSuccess(w, emptySeries(points), start)
}

// PlayersByType returns per-bucket sums of players grouped by world type.
func (h *Handler) PlayersByType(w http.ResponseWriter, r *http.Request) {
	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	points, err := h.db.SeriesByType(r.Context(), req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query type series", err)
		return
	}

	respondSuccess(w, emptySeries(points), start)
}

// PlayersByRegion returns per-bucket sums of players grouped by location.
func (h *Handler) PlayersByRegion(w http.ResponseWriter, r *http.Request) {
	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	points, err := h.db.SeriesByRegion(r.Context(), req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query region series", err)
		return
	}

	respondSuccess(w, emptySeries(points), start)
}

// PlayersByWorld returns the bucketed series for one OSRS world.
//
//	GET /api/v1/players/by-world/301?granularity=5min
func (h *Handler) PlayersByWorld(w http.ResponseWriter, r *http.Request) {
	world := chi.URLParam(r, "world")
	if world == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "world is required", nil)
		return
	}

	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	points, err := h.db.WorldSeries(r.Context(), world, req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query world series", err)
		return
	}

	respondSuccess(w, emptySeries(points), start)
}

// PlayersByActivity returns whole-range totals per world activity.
func (h *Handler) PlayersByActivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.seriesRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	totals, err := h.db.ActivityTotals(r.Context(), req.SeriesQuery())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query activity totals", err)
		return
	}

	respondSuccess(w, emptySeries(totals), start)
}

// WorldSnapshot returns the per-world rows at one timestamp.
//
//	GET /api/v1/worlds/snapshot           (latest snapshot)
//	GET /api/v1/worlds/snapshot?at=2024-03-05T14:00:00Z
func (h *Handler) WorldSnapshot(w http.ResponseWriter, r *http.Request) {
	var at *time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		t, err := parseTimestamp("at", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		at = &t
	}

	start := time.Now()
	worlds, err := h.db.WorldSnapshot(r.Context(), at)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to query world snapshot", err)
		return
	}

	respondSuccess(w, emptySeries(worlds), start)
}

// ReportYesterday returns the previous UTC day's free/members summary.
func (h *Handler) ReportYesterday(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.db.YesterdayReport(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to build yesterday report", err)
		return
	}

	respondSuccess(w, report, start)
}

// seriesRequest parses and validates the shared series parameters,
// responding with 400 itself on failure.
func (h *Handler) seriesRequest(w http.ResponseWriter, r *http.Request) (*SeriesRequest, bool) {
	req, err := h.parseSeriesRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return nil, false
	}
	if apiErr := validateRequest(req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return nil, false
	}
	return req, true
}
