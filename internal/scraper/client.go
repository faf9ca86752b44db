// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package scraper fetches the public RuneScape player counters and the OSRS
// world list, parses them into observations, and appends them to the store
// on a fixed interval.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/models"
)

// maxResponseBytes caps how much of a response body is read. The world-list
// page is a few hundred KB; anything past 4MB is not the page we expect.
const maxResponseBytes = 4 << 20

// Client fetches the RuneScape population sources over HTTP. All requests
// go through one circuit breaker so a broken or rate-limiting upstream
// stops being hit quickly.
type Client struct {
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	cfg        *config.ScraperConfig
}

// NewClient creates a scrape client from configuration.
func NewClient(cfg *config.ScraperConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         newFetchBreaker("runescape-scrape"),
		cfg:        cfg,
	}
}

// fetch performs one GET through the circuit breaker and returns the body.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return body, nil
	})
}

// CombinedCount fetches the combined RS3+OSRS online counter.
func (c *Client) CombinedCount(ctx context.Context) (int64, error) {
	body, err := c.fetch(ctx, c.cfg.CombinedURL)
	if err != nil {
		return 0, fmt.Errorf("combined counter: %w", err)
	}
	count, err := parseCombinedCount(body)
	if err != nil {
		return 0, fmt.Errorf("combined counter: %w", err)
	}
	return count, nil
}

// WorldList fetches the OSRS world-list page and returns the headline OSRS
// total plus one observation per world. ObservedAt is left zero; the poller
// stamps all rows of a cycle with one timestamp.
func (c *Client) WorldList(ctx context.Context) (int64, []models.WorldObservation, error) {
	body, err := c.fetch(ctx, c.cfg.WorldsURL)
	if err != nil {
		return 0, nil, fmt.Errorf("world list: %w", err)
	}
	total, worlds, err := parseWorldList(body)
	if err != nil {
		return 0, nil, fmt.Errorf("world list: %w", err)
	}
	return total, worlds, nil
}

// Ping verifies the combined counter endpoint is reachable and parseable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	_, err := c.CombinedCount(ctx)
	return err
}

// BreakerState reports the current circuit breaker state for health checks.
func (c *Client) BreakerState() string {
	return stateToString(c.cb.State())
}
