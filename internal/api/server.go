// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/logging"
)

// shutdownTimeout bounds the graceful drain on shutdown.
const shutdownTimeout = 10 * time.Second

// Server runs the HTTP API as a suture.Service.
type Server struct {
	srv  *http.Server
	addr string
}

// NewServer builds the HTTP server around the router.
func NewServer(cfg *config.ServerConfig, handler http.Handler) *Server {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      cfg.Timeout,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Serve implements suture.Service: listen until the context is canceled,
// then drain gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logging.Info().Str("addr", s.addr).Msg("HTTP server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logging.Err(err).Msg("HTTP server shutdown incomplete")
		return err
	}

	logging.Info().Msg("HTTP server stopped")
	return ctx.Err()
}
