// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/runetrics/runetrics/internal/logging"
	"github.com/runetrics/runetrics/internal/metrics"
	"github.com/runetrics/runetrics/internal/models"
)

// Store is the subset of the observation store the poller writes to.
type Store interface {
	InsertGlobalObservations(ctx context.Context, obs []models.GlobalObservation) error
	InsertWorldSnapshot(ctx context.Context, worlds []models.WorldObservation, observedAt time.Time) error
}

// Poller runs the scrape cycle on a fixed interval. A failed cycle is
// logged and counted; the next tick simply tries again.
type Poller struct {
	client   *Client
	store    Store
	interval time.Duration

	// Runtime state
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	statsMu sync.RWMutex
	stats   PollerStats
}

// PollerStats reports scrape cycle outcomes.
type PollerStats struct {
	Cycles      int64     `json:"cycles"`
	Failures    int64     `json:"failures"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
}

// NewPoller creates a poller that scrapes through client into store.
func NewPoller(client *Client, store Store, interval time.Duration) *Poller {
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	logging.Info().Dur("interval", p.interval).Msg("starting scrape poller")

	p.wg.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Serve implements suture.Service for supervisor integration.
func (p *Poller) Serve(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	p.Stop()

	return ctx.Err()
}

// Stop gracefully stops the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logging.Info().Msg("scrape poller stopped")
}

// IsRunning returns whether the poller is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Stats returns a copy of the poller's counters.
func (p *Poller) Stats() PollerStats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}

// pollLoop runs one scrape immediately, then one per tick.
func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("scrape poller context canceled")
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one scrape cycle and records the outcome.
func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	err := p.scrape(ctx)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.Cycles++
	if err != nil {
		p.stats.Failures++
		p.stats.LastError = err.Error()
		logging.Err(err).Msg("scrape cycle failed")
		return
	}
	p.stats.LastSuccess = time.Now().UTC()
	p.stats.LastError = ""
	metrics.ScrapeLastSuccess.SetToCurrentTime()
}

// scrape fetches both sources, derives the RS3 count, and appends one
// timestamp's worth of observations.
func (p *Poller) scrape(ctx context.Context) error {
	combined, err := p.client.CombinedCount(ctx)
	if err != nil {
		metrics.ScrapeErrors.WithLabelValues("combined").Inc()
		return err
	}

	osrsTotal, worlds, err := p.client.WorldList(ctx)
	if err != nil {
		metrics.ScrapeErrors.WithLabelValues("worlds").Inc()
		return err
	}

	// The combined endpoint counts both games; RS3 is the remainder.
	// A negative remainder means the two sources were read across a
	// population swing; record it anyway, the store is append-only truth.
	rs3 := combined - osrsTotal
	if rs3 < 0 {
		logging.Warn().
			Int64("combined", combined).
			Int64("osrs", osrsTotal).
			Msg("combined counter below OSRS total")
	}

	observedAt := time.Now().UTC().Truncate(time.Second)

	globals := []models.GlobalObservation{
		{Game: models.GameRS3, PlayerCount: rs3, ObservedAt: observedAt},
		{Game: models.GameOSRS, PlayerCount: osrsTotal, ObservedAt: observedAt},
	}
	if err := p.store.InsertGlobalObservations(ctx, globals); err != nil {
		metrics.ScrapeErrors.WithLabelValues("store").Inc()
		return err
	}
	if err := p.store.InsertWorldSnapshot(ctx, worlds, observedAt); err != nil {
		metrics.ScrapeErrors.WithLabelValues("store").Inc()
		return err
	}

	metrics.PlayersOnline.WithLabelValues(string(models.GameRS3)).Set(float64(rs3))
	metrics.PlayersOnline.WithLabelValues(string(models.GameOSRS)).Set(float64(osrsTotal))

	logging.Debug().
		Int64("rs3", rs3).
		Int64("osrs", osrsTotal).
		Int("worlds", len(worlds)).
		Time("observed_at", observedAt).
		Msg("scrape cycle complete")

	return nil
}
