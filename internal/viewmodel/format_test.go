package viewmodel

import (
	"testing"
	"time"
)

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		exp      int64
		expected int64
	}{
		{name: "zero experience", exp: 0, expected: 1},
		{name: "just below first threshold", exp: 99, expected: 1},
		{name: "first threshold", exp: 100, expected: 2},
		{name: "just below second threshold", exp: 399, expected: 2},
		{name: "second threshold", exp: 400, expected: 3},
		{name: "large value", exp: 10000, expected: 11},
		{name: "negative clamps to level one", exp: -50, expected: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Level(tc.exp); got != tc.expected {
				t.Fatalf("Level(%d) = %d, expected %d", tc.exp, got, tc.expected)
			}
		})
	}
}

func TestLevelMonotonic(t *testing.T) {
	previous := Level(0)
	for exp := int64(1); exp <= 5000; exp++ {
		current := Level(exp)
		if current < previous {
			t.Fatalf("level decreased from %d to %d at exp %d", previous, current, exp)
		}
		previous = current
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{name: "zero", seconds: 0, expected: "0m"},
		{name: "minutes only", seconds: 59 * 60, expected: "59m"},
		{name: "exact hour", seconds: 3600, expected: "1h 0m"},
		{name: "hours and minutes", seconds: 2*3600 + 15*60, expected: "2h 15m"},
		{name: "negative clamps to zero", seconds: -30, expected: "0m"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatUptime(tc.seconds); got != tc.expected {
				t.Fatalf("FormatUptime(%d) = %q, expected %q", tc.seconds, got, tc.expected)
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{name: "under a minute", at: now.Add(-30 * time.Second), expected: "Just now"},
		{name: "minutes", at: now.Add(-5 * time.Minute), expected: "5m ago"},
		{name: "hours", at: now.Add(-3 * time.Hour), expected: "3h ago"},
		{name: "days", at: now.Add(-49 * time.Hour), expected: "2d ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTime(tc.at, now); got != tc.expected {
				t.Fatalf("RelativeTime = %q, expected %q", got, tc.expected)
			}
		})
	}
}
