// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package scraper

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runetrics/runetrics/internal/models"
)

var (
	// combinedCountRe matches the integer inside the JSONP callback of the
	// player_count.js endpoint, e.g. `jQuery123(118478);`.
	combinedCountRe = regexp.MustCompile(`\((\d+)\)`)

	// headlineCountRe matches the first comma-grouped number in the OSRS
	// homepage headline, e.g. "There are currently 84,562 people playing!".
	headlineCountRe = regexp.MustCompile(`[\d,]+`)

	// worldNumberRe extracts the trailing world number from the world cell,
	// e.g. "OldSchool 301" -> "301".
	worldNumberRe = regexp.MustCompile(`(\d+)$`)
)

// parseCombinedCount extracts the combined RS3+OSRS count from the
// player_count.js JSONP payload. Despite the endpoint's RS3 branding the
// figure covers both games; the poller subtracts the OSRS total to derive
// RS3.
func parseCombinedCount(body []byte) (int64, error) {
	match := combinedCountRe.FindSubmatch(body)
	if match == nil {
		return 0, fmt.Errorf("no player count in payload (%d bytes)", len(body))
	}
	count, err := strconv.ParseInt(string(match[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed player count %q: %w", match[1], err)
	}
	return count, nil
}

// parseWorldList extracts the headline OSRS player count and the per-world
// table from the world-select page. World rows have five cells: world,
// players, location, type, activity. Rows that don't parse are skipped;
// the page carries decorative rows between sections.
func parseWorldList(body []byte) (int64, []models.WorldObservation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	total, err := parseHeadlineCount(doc)
	if err != nil {
		return 0, nil, err
	}

	var worlds []models.WorldObservation
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		world := worldNumberRe.FindString(strings.TrimSpace(cells.Eq(0).Text()))
		if world == "" {
			return
		}

		players, err := parsePlayersCell(cells.Eq(1).Text())
		if err != nil {
			return
		}

		worlds = append(worlds, models.WorldObservation{
			World:    world,
			Players:  players,
			Location: strings.TrimSpace(cells.Eq(2).Text()),
			Type:     strings.TrimSpace(cells.Eq(3).Text()),
			Activity: strings.TrimSpace(cells.Eq(4).Text()),
		})
	})

	if len(worlds) == 0 {
		return 0, nil, fmt.Errorf("no world rows found (%d bytes)", len(body))
	}

	return total, worlds, nil
}

// parseHeadlineCount reads the "people playing" headline from the page.
func parseHeadlineCount(doc *goquery.Document) (int64, error) {
	text := doc.Find("p.player-count").First().Text()
	raw := headlineCountRe.FindString(text)
	if raw == "" {
		return 0, fmt.Errorf("no headline player count found")
	}
	count, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed headline count %q: %w", raw, err)
	}
	return count, nil
}

// parsePlayersCell converts a "1,234 players" cell to an integer.
// "OFFLINE" and other non-numeric cells are errors; the caller skips them.
func parsePlayersCell(text string) (int64, error) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "players"))
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, fmt.Errorf("empty players cell")
	}
	return strconv.ParseInt(text, 10, 64)
}
