// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package scraper

import (
	"testing"
)

const worldListFixture = `<!DOCTYPE html>
<html>
<body>
<p class="player-count">There are currently 84,562 people playing!</p>
<table>
  <tr>
    <th>World</th><th>Players</th><th>Location</th><th>Type</th><th>Activity</th>
  </tr>
  <tr>
    <td><a href="#">OldSchool 301</a></td>
    <td>1,275 players</td>
    <td>United States</td>
    <td>Free</td>
    <td>-</td>
  </tr>
  <tr>
    <td><a href="#">OldSchool 302</a></td>
    <td>1,840 players</td>
    <td>United Kingdom</td>
    <td>Members</td>
    <td>Trade - Members</td>
  </tr>
  <tr>
    <td><a href="#">OldSchool 303</a></td>
    <td>OFFLINE</td>
    <td>Germany</td>
    <td>Members</td>
    <td>-</td>
  </tr>
  <tr>
    <td colspan="5">decorative spacer row</td>
  </tr>
</table>
</body>
</html>`

func TestParseCombinedCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{"jsonp callback", `jQuery36004({});document.getElementById('playerCount').innerHTML=(118478);`, 118478, false},
		{"bare callback", `jQuery(95034);`, 95034, false},
		{"no number", `jQuery();`, 0, true},
		{"empty body", ``, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCombinedCount([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got count %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("count: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseWorldList(t *testing.T) {
	total, worlds, err := parseWorldList([]byte(worldListFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 84562 {
		t.Errorf("headline total: got %d, want 84562", total)
	}

	// The OFFLINE row and the spacer row must be skipped.
	if len(worlds) != 2 {
		t.Fatalf("worlds: got %d, want 2", len(worlds))
	}

	w := worlds[0]
	if w.World != "301" || w.Players != 1275 || w.Location != "United States" || w.Type != "Free" {
		t.Errorf("world 301 parsed wrong: %+v", w)
	}
	// Raw "-" activity survives parsing; canonicalization happens on insert.
	if w.Activity != "-" {
		t.Errorf("world 301 activity: got %q, want %q", w.Activity, "-")
	}

	if worlds[1].World != "302" || worlds[1].Players != 1840 || worlds[1].Activity != "Trade - Members" {
		t.Errorf("world 302 parsed wrong: %+v", worlds[1])
	}
}

func TestParseWorldListNoRows(t *testing.T) {
	page := `<html><body><p class="player-count">There are currently 10 people playing!</p><table></table></body></html>`
	_, _, err := parseWorldList([]byte(page))
	if err == nil {
		t.Fatal("expected error for page with no world rows")
	}
}

func TestParseWorldListMissingHeadline(t *testing.T) {
	page := `<html><body><table><tr><td>OldSchool 301</td><td>5 players</td><td>US</td><td>Free</td><td>-</td></tr></table></body></html>`
	_, _, err := parseWorldList([]byte(page))
	if err == nil {
		t.Fatal("expected error for page without headline count")
	}
}

func TestParsePlayersCell(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1,275 players", 1275, false},
		{" 840 players ", 840, false},
		{"0 players", 0, false},
		{"OFFLINE", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePlayersCell(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePlayersCell(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePlayersCell(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePlayersCell(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}
