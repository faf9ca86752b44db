// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package metrics defines Prometheus instrumentation for Runetrics.
// All collectors are registered with the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeDuration tracks how long a full scrape cycle takes.
	ScrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "runetrics_scrape_duration_seconds",
		Help:    "Duration of a full player-count scrape cycle",
		Buckets: prometheus.DefBuckets,
	})

	// ScrapeErrors counts failed scrapes by source.
	ScrapeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runetrics_scrape_errors_total",
		Help: "Total scrape failures by source",
	}, []string{"source"})

	// ScrapeLastSuccess records the unix time of the last successful scrape.
	ScrapeLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runetrics_scrape_last_success_timestamp_seconds",
		Help: "Unix timestamp of the last successful scrape",
	})

	// ObservationsInserted counts rows written to the store by table.
	ObservationsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runetrics_observations_inserted_total",
		Help: "Total observation rows inserted by table",
	}, []string{"table"})

	// PlayersOnline exposes the most recently scraped count per game.
	PlayersOnline = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "runetrics_players_online",
		Help: "Most recently observed online player count by game",
	}, []string{"game"})

	// DBQueryDuration tracks store query latency by query name.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "runetrics_db_query_duration_seconds",
		Help:    "Duration of store queries by query name",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"query"})

	// APIRequestsTotal counts API requests by method, path and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runetrics_api_requests_total",
		Help: "Total API requests by method, path, and status code",
	}, []string{"method", "path", "status"})

	// APIRequestDuration tracks API request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "runetrics_api_request_duration_seconds",
		Help:    "Duration of API requests by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// APIActiveRequests tracks in-flight API requests.
	APIActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runetrics_api_active_requests",
		Help: "Number of in-flight API requests",
	})

	// CircuitBreakerState exposes the scraper breaker state
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runetrics_circuit_breaker_state",
		Help: "Scraper circuit breaker state (0=closed, 1=half-open, 2=open)",
	})

	// CircuitBreakerTransitions counts breaker state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runetrics_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions by from/to state",
	}, []string{"from", "to"})
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveQuery records one store query's latency.
func ObserveQuery(name string, start time.Time) {
	DBQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
