// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import "testing"

// Shared test assertion helpers. t.Helper() keeps failure messages pointed
// at the calling line.

// checkNoError fails the test if err is not nil.
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkError fails the test if err is nil.
func checkError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// checkStringEqual checks that got equals want.
func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

// checkFloatEqual checks got == want within a small tolerance.
func checkFloatEqual(t *testing.T, fieldName string, got, want float64) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e-9 {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
}

// checkSliceEmpty checks that slice length == 0.
func checkSliceEmpty(t *testing.T, name string, length int) {
	t.Helper()
	if length != 0 {
		t.Errorf("%s should be empty, got %d items", name, length)
	}
}

// checkSortedAscending checks that strings are sorted ascending.
func checkSortedAscending(t *testing.T, name string, values []string) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			t.Errorf("%s not sorted ascending: %q at %d > %q at %d",
				name, values[i-1], i-1, values[i], i)
			return
		}
	}
}

// checkSortedDescending checks that values are sorted in descending order.
func checkSortedDescending(t *testing.T, name string, values []int64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i-1] < values[i] {
			t.Errorf("%s not sorted descending: value at %d (%d) < value at %d (%d)",
				name, i-1, values[i-1], i, values[i])
			return
		}
	}
}
