// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	defer SetLogger(original)
	SetLogger(NewTestLogger(&buf))

	logger := NewSlogLogger()
	logger.Info("service started", slog.String("service", "ingest-layer"), slog.Int("restarts", 2))

	out := buf.String()
	if !strings.Contains(out, `"message":"service started"`) {
		t.Errorf("missing message: %s", out)
	}
	if !strings.Contains(out, `"service":"ingest-layer"`) {
		t.Errorf("missing string attr: %s", out)
	}
	if !strings.Contains(out, `"restarts":2`) {
		t.Errorf("missing int attr: %s", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("missing level: %s", out)
	}
}

func TestSlogHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	defer SetLogger(original)
	SetLogger(NewTestLogger(&buf))

	logger := NewSlogLogger().With(slog.String("supervisor", "runetrics"))
	logger.Warn("restarting", slog.String("service", "scraper"))

	out := buf.String()
	if !strings.Contains(out, `"supervisor":"runetrics"`) {
		t.Errorf("missing WithAttrs field: %s", out)
	}
	buf.Reset()

	NewSlogLogger().WithGroup("restart").Warn("backing off", slog.String("service", "scraper"))
	out = buf.String()
	if !strings.Contains(out, `"restart.service":"scraper"`) {
		t.Errorf("missing grouped attr: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("missing level: %s", out)
	}
}
