// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/models"
)

// fakeStore records inserted observations for assertions.
type fakeStore struct {
	mu        sync.Mutex
	globals   []models.GlobalObservation
	worlds    []models.WorldObservation
	stamps    []time.Time
	insertErr error
}

func (s *fakeStore) InsertGlobalObservations(_ context.Context, obs []models.GlobalObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.globals = append(s.globals, obs...)
	return nil
}

func (s *fakeStore) InsertWorldSnapshot(_ context.Context, worlds []models.WorldObservation, observedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.worlds = append(s.worlds, worlds...)
	s.stamps = append(s.stamps, observedAt)
	return nil
}

// newScrapeServer serves canned combined-counter and world-list responses.
func newScrapeServer(t *testing.T, combined string, worldsPage string) (*httptest.Server, *config.ScraperConfig) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/player_count.js", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(combined))
	})
	mux.HandleFunc("/slu", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(worldsPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.ScraperConfig{
		Enabled:     true,
		Interval:    time.Minute,
		Timeout:     5 * time.Second,
		CombinedURL: srv.URL + "/player_count.js",
		WorldsURL:   srv.URL + "/slu",
		UserAgent:   "runetrics-test",
	}
	return srv, cfg
}

func TestScrapeDerivesRS3FromCombined(t *testing.T) {
	_, cfg := newScrapeServer(t, `jQuery(118478);`, worldListFixture)

	store := &fakeStore{}
	poller := NewPoller(NewClient(cfg), store, cfg.Interval)

	if err := poller.scrape(context.Background()); err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if len(store.globals) != 2 {
		t.Fatalf("globals: got %d rows, want 2", len(store.globals))
	}

	var rs3, osrs int64 = -1, -1
	for _, g := range store.globals {
		switch g.Game {
		case models.GameRS3:
			rs3 = g.PlayerCount
		case models.GameOSRS:
			osrs = g.PlayerCount
		}
	}
	if osrs != 84562 {
		t.Errorf("osrs count: got %d, want 84562", osrs)
	}
	if rs3 != 118478-84562 {
		t.Errorf("rs3 count: got %d, want %d", rs3, 118478-84562)
	}

	if len(store.worlds) != 2 {
		t.Errorf("worlds: got %d rows, want 2", len(store.worlds))
	}

	// Every row of a cycle shares one second-resolution UTC timestamp.
	if len(store.stamps) != 1 {
		t.Fatalf("stamps: got %d, want 1", len(store.stamps))
	}
	stamp := store.stamps[0]
	if stamp.Location() != time.UTC || stamp.Nanosecond() != 0 {
		t.Errorf("timestamp not truncated UTC: %v", stamp)
	}
	for _, g := range store.globals {
		if !g.ObservedAt.Equal(stamp) {
			t.Errorf("global observed_at %v differs from snapshot stamp %v", g.ObservedAt, stamp)
		}
	}
}

func TestScrapePropagatesFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.ScraperConfig{
		Timeout:     5 * time.Second,
		CombinedURL: srv.URL + "/player_count.js",
		WorldsURL:   srv.URL + "/slu",
	}

	store := &fakeStore{}
	poller := NewPoller(NewClient(cfg), store, time.Minute)

	if err := poller.scrape(context.Background()); err == nil {
		t.Fatal("expected error from 503 upstream")
	}
	if len(store.globals) != 0 {
		t.Errorf("no observations should be stored on failure, got %d", len(store.globals))
	}
}

func TestScrapePropagatesStoreFailure(t *testing.T) {
	_, cfg := newScrapeServer(t, `jQuery(118478);`, worldListFixture)

	store := &fakeStore{insertErr: errors.New("disk full")}
	poller := NewPoller(NewClient(cfg), store, cfg.Interval)

	if err := poller.scrape(context.Background()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestPollerStartStop(t *testing.T) {
	_, cfg := newScrapeServer(t, `jQuery(118478);`, worldListFixture)

	store := &fakeStore{}
	poller := NewPoller(NewClient(cfg), store, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !poller.IsRunning() {
		t.Error("poller should report running after Start")
	}

	// Starting twice is a no-op.
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	// The initial poll fires immediately; wait for it.
	deadline := time.After(10 * time.Second)
	for {
		if poller.Stats().Cycles >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial poll never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	poller.Stop()
	if poller.IsRunning() {
		t.Error("poller should report stopped after Stop")
	}

	// Stopping twice is a no-op.
	poller.Stop()

	stats := poller.Stats()
	if stats.Cycles < 1 || stats.Failures != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.LastSuccess.IsZero() {
		t.Error("last success should be set")
	}
}

func TestPollerServeHonorsContext(t *testing.T) {
	_, cfg := newScrapeServer(t, `jQuery(118478);`, worldListFixture)

	poller := NewPoller(NewClient(cfg), &fakeStore{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Serve(ctx) }()

	// Give Serve a moment to start, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("serve returned %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after context cancel")
	}

	if poller.IsRunning() {
		t.Error("poller should be stopped after Serve returns")
	}
}
