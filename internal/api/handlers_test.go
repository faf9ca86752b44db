// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/runetrics/runetrics/internal/config"
	"github.com/runetrics/runetrics/internal/database"
	"github.com/runetrics/runetrics/internal/models"
)

// envelope mirrors models.APIResponse with raw data for per-test decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// newTestServer builds a handler stack over an in-memory store.
func newTestServer(t *testing.T) (*database.DB, http.Handler) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	apiCfg := &config.APIConfig{
		DefaultRange:    24 * time.Hour,
		RateLimitReqs:   0, // disabled in tests
		RateLimitWindow: time.Minute,
	}
	handler := NewHandler(db, apiCfg, "test")
	router := NewRouter(handler, apiCfg)
	return db, router.Setup()
}

// get performs a request and decodes the envelope.
func get(t *testing.T, h http.Handler, url string) (int, *envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec.Code, &env
}

func seedGlobal(t *testing.T, db *database.DB, game models.Game, count int64, at time.Time) {
	t.Helper()
	err := db.InsertGlobalObservations(context.Background(), []models.GlobalObservation{
		{Game: game, PlayerCount: count, ObservedAt: at},
	})
	if err != nil {
		t.Fatalf("failed to seed global observation: %v", err)
	}
}

func TestPlayersEndpoint(t *testing.T) {
	db, h := newTestServer(t)

	base := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	seedGlobal(t, db, models.GameOSRS, 10, base.Add(5*time.Minute))
	seedGlobal(t, db, models.GameOSRS, 30, base.Add(25*time.Minute))
	seedGlobal(t, db, models.GameOSRS, 20, base.Add(45*time.Minute))
	seedGlobal(t, db, models.GameRS3, 999, base.Add(5*time.Minute))

	url := "/api/v1/players?game=OSRS&granularity=hourly&aggregation=peak" +
		"&start=2024-03-05T14:00:00Z&end=2024-03-05T15:00:00Z"
	code, env := get(t, h, url)
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}
	if env.Status != "success" {
		t.Errorf("envelope status: got %q, want success", env.Status)
	}

	var points []models.SeriesPoint
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatalf("failed to decode points: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points: got %d, want 1", len(points))
	}
	if points[0].Bucket != "2024-03-05 14:00:00" {
		t.Errorf("bucket: got %q, want %q", points[0].Bucket, "2024-03-05 14:00:00")
	}
	if points[0].Players != 30 {
		t.Errorf("peak players: got %v, want 30", points[0].Players)
	}
}

func TestPlayersRejectsUnknownEnums(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		url  string
	}{
		{"unknown game", "/api/v1/players?game=RSC"},
		{"missing game", "/api/v1/players"},
		{"unknown granularity", "/api/v1/players?game=OSRS&granularity=yearly"},
		{"unknown aggregation", "/api/v1/players?game=OSRS&aggregation=median"},
		{"bad timestamp", "/api/v1/players?game=OSRS&start=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := get(t, h, tt.url)
			if code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
			}
		})
	}
}

func TestPlayersEmptyRangeReturnsEmptyArray(t *testing.T) {
	_, h := newTestServer(t)

	code, env := get(t, h, "/api/v1/players?game=OSRS"+
		"&start=2020-01-01T00:00:00Z&end=2020-01-02T00:00:00Z")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}
	if string(env.Data) != "[]" {
		t.Errorf("empty range must serialize as [], got %s", env.Data)
	}
}

func TestPlayersDefaultRangeIsTrailing24Hours(t *testing.T) {
	db, h := newTestServer(t)

	now := time.Now().UTC()
	seedGlobal(t, db, models.GameOSRS, 100, now.Add(-time.Hour))
	seedGlobal(t, db, models.GameOSRS, 900, now.Add(-48*time.Hour))

	code, env := get(t, h, "/api/v1/players?game=OSRS&granularity=daily")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}

	var points []models.SeriesPoint
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatalf("failed to decode points: %v", err)
	}
	for _, p := range points {
		if p.Players == 900 {
			t.Errorf("observation outside the trailing window leaked in: %+v", p)
		}
	}
}

func TestCombinedEndpointSumsGames(t *testing.T) {
	db, h := newTestServer(t)

	at := time.Date(2024, 3, 5, 14, 10, 0, 0, time.UTC)
	seedGlobal(t, db, models.GameRS3, 40, at)
	seedGlobal(t, db, models.GameOSRS, 60, at)

	code, env := get(t, h, "/api/v1/players/combined?granularity=hourly"+
		"&start=2024-03-05T14:00:00Z&end=2024-03-05T15:00:00Z")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}

	var points []models.SeriesPoint
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatalf("failed to decode points: %v", err)
	}
	if len(points) != 1 || points[0].Players != 100 {
		t.Fatalf("combined series: got %+v, want one bucket of 100", points)
	}
}

func TestWorldSnapshotEndpoint(t *testing.T) {
	db, h := newTestServer(t)

	at := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	err := db.InsertWorldSnapshot(context.Background(), []models.WorldObservation{
		{World: "301", Players: 500, Location: "United States", Type: "Free", Activity: "-"},
		{World: "302", Players: 1200, Location: "United Kingdom", Type: "Members", Activity: "Trade"},
	}, at)
	if err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	// Latest snapshot without ?at=.
	code, env := get(t, h, "/api/v1/worlds/snapshot")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}
	var worlds []models.WorldObservation
	if err := json.Unmarshal(env.Data, &worlds); err != nil {
		t.Fatalf("failed to decode worlds: %v", err)
	}
	if len(worlds) != 2 {
		t.Fatalf("worlds: got %d, want 2", len(worlds))
	}
	if worlds[0].World != "302" {
		t.Errorf("snapshot must order by players desc, got %q first", worlds[0].World)
	}
	if worlds[1].Activity != models.NoActivity {
		t.Errorf("activity: got %q, want %q", worlds[1].Activity, models.NoActivity)
	}

	// Exact timestamp match.
	code, env = get(t, h, "/api/v1/worlds/snapshot?at=2024-03-05T14:00:00Z")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}
	if err := json.Unmarshal(env.Data, &worlds); err != nil {
		t.Fatalf("failed to decode worlds: %v", err)
	}
	if len(worlds) != 2 {
		t.Errorf("exact-match snapshot: got %d worlds, want 2", len(worlds))
	}

	// Near-miss timestamp yields empty, not nearest-match.
	code, env = get(t, h, "/api/v1/worlds/snapshot?at=2024-03-05T14:00:30Z")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}
	if string(env.Data) != "[]" {
		t.Errorf("near-miss snapshot must be empty, got %s", env.Data)
	}

	// Malformed timestamp is a 400.
	code, _ = get(t, h, "/api/v1/worlds/snapshot?at=noon")
	if code != http.StatusBadRequest {
		t.Errorf("malformed at: got %d, want 400", code)
	}
}

func TestYesterdayReportEndpoint(t *testing.T) {
	db, h := newTestServer(t)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour).Add(12 * time.Hour)
	err := db.InsertWorldSnapshot(context.Background(), []models.WorldObservation{
		{World: "301", Players: 100, Type: "Free"},
		{World: "302", Players: 300, Type: "Members"},
	}, yesterday)
	if err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	code, env := get(t, h, "/api/v1/reports/yesterday")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (error: %+v)", code, env.Error)
	}

	var report models.YesterdayReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.FreeTotal != 100 || report.MembersTotal != 300 {
		t.Errorf("report totals: got free=%d members=%d, want 100/300",
			report.FreeTotal, report.MembersTotal)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("live: got %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("ready: got %d, want 200", rec.Code)
	}

	code, env := get(t, h, "/api/v1/health")
	if code != http.StatusOK {
		t.Fatalf("health: got %d, want 200", code)
	}
	var status models.HealthStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("failed to decode health payload: %v", err)
	}
	if status.Status != "healthy" || status.Database != "connected" {
		t.Errorf("health payload: %+v", status)
	}
	if status.Version != "test" {
		t.Errorf("version: got %q, want test", status.Version)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing from response")
	}

	// A caller-supplied ID is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Errorf("X-Request-ID: got %q, want caller-id", got)
	}
}
