// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package scraper

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/runetrics/runetrics/internal/logging"
	"github.com/runetrics/runetrics/internal/metrics"
)

// newFetchBreaker builds the circuit breaker guarding outbound HTTP fetches.
// The breaker keeps a failing Jagex endpoint from being hammered every tick:
//   - max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute open-state timeout before probing again
//   - opens at >= 60% failures over at least 10 requests
func newFetchBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.Set(0) // 0 = closed

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening scrape circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(_ string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("scrape circuit state change")
			metrics.CircuitBreakerState.Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(fromStr, toStr).Inc()
		},
	})
}

// stateToFloat converts circuit breaker state to a metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a log label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
