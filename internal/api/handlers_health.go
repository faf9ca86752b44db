// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/runetrics/runetrics/internal/models"
)

// healthCheckTimeout bounds the database ping inside health handlers.
const healthCheckTimeout = 5 * time.Second

// Health returns the full health payload: database connectivity, uptime,
// and the last successful scrape time when the scraper is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "healthy"
	dbStatus := "connected"
	httpStatus := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status = "unhealthy"
		dbStatus = "disconnected"
		httpStatus = http.StatusServiceUnavailable
	}

	payload := models.HealthStatus{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Database:      dbStatus,
		Timestamp:     time.Now().UTC(),
	}
	if h.lastScrape != nil {
		payload.LastScrape = h.lastScrape()
	}

	respondJSON(w, httpStatus, &models.APIResponse{
		Status: status,
		Data:   payload,
		Metadata: models.Metadata{
			Timestamp: payload.Timestamp,
		},
	})
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write([]byte(`{"status":"alive"}`))
}

// HealthReady is the readiness probe: the store must answer a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.db.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		//nolint:errcheck // HTTP response write errors are not recoverable
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write([]byte(`{"status":"ready"}`))
}
