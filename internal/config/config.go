// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

// Package config holds all application configuration for Runetrics.
//
// Configuration loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/runetrics/runetrics/internal/validation"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Scraper  ScraperConfig  `koanf:"scraper"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8057)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment variables:
//   - DUCKDB_PATH: database file path, ":memory:" for ephemeral
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: worker threads, 0 = runtime.NumCPU()
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"`
}

// ScraperConfig holds player-count scraper settings.
//
// Environment variables:
//   - SCRAPE_ENABLED: run the scraper poller (default: true)
//   - SCRAPE_INTERVAL: time between scrapes (default: 1m)
//   - SCRAPE_TIMEOUT: per-request HTTP timeout (default: 15s)
//   - SCRAPE_COMBINED_URL: combined RS3+OSRS counter endpoint
//   - SCRAPE_WORLDS_URL: OSRS world-list page
//   - SCRAPE_USER_AGENT: User-Agent header for outbound requests
type ScraperConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Interval    time.Duration `koanf:"interval"`
	Timeout     time.Duration `koanf:"timeout"`
	CombinedURL string        `koanf:"combined_url" validate:"required,url"`
	WorldsURL   string        `koanf:"worlds_url" validate:"required,url"`
	UserAgent   string        `koanf:"user_agent"`
}

// APIConfig holds query-surface settings.
//
// Environment variables:
//   - API_DEFAULT_RANGE: trailing window applied when the caller gives no
//     start/end (default: 24h)
//   - API_RATE_LIMIT_REQUESTS / API_RATE_LIMIT_WINDOW: per-IP rate limit
type APIConfig struct {
	DefaultRange     time.Duration `koanf:"default_range"`
	RateLimitReqs    int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow  time.Duration `koanf:"rate_limit_window"`
	CORSAllowOrigins []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
//
// Environment variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that cannot work at runtime.
// Struct-tag validation runs first; the validate* methods cover the
// cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %s", verr.Error())
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateScraper(); err != nil {
		return err
	}
	return c.validateDatabase()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateScraper() error {
	if !c.Scraper.Enabled {
		return nil
	}
	if c.Scraper.Interval < 10*time.Second {
		return fmt.Errorf("scraper.interval must be at least 10s, got %s", c.Scraper.Interval)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be positive, got %s", c.Scraper.Timeout)
	}
	for name, raw := range map[string]string{
		"scraper.combined_url": c.Scraper.CombinedURL,
		"scraper.worlds_url":   c.Scraper.WorldsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid absolute URL: %q", name, raw)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}
