// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package api provides the HTTP query surface over the observation store,
// routed with chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/logging"
	"github.com/runetrics/runetrics/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
	cors    func(http.Handler) http.Handler
}

// NewRouter creates a router around the handler.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{
		handler: handler,
		cfg:     cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler shape.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.cors)

	// Health gets a permissive limit so monitoring can probe freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", router.handler.Players)
			r.Get("/combined", router.handler.PlayersCombined)
			r.Get("/by-type", router.handler.PlayersByType)
			r.Get("/by-region", router.handler.PlayersByRegion)
			r.Get("/by-world/{world}", router.handler.PlayersByWorld)
			r.Get("/by-activity", router.handler.PlayersByActivity)
		})

		r.Get("/worlds/snapshot", router.handler.WorldSnapshot)
		r.Get("/reports/yesterday", router.handler.ReportYesterday)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimit builds the per-IP limiter from configuration; a zero request
// count disables limiting.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	window := router.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(router.cfg.RateLimitReqs, window)
}

// requestIDWithLogging attaches an X-Request-ID header and threads request
// and correlation IDs through the logging context.
func requestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())

			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
