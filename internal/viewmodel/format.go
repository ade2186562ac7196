package viewmodel

import (
	"fmt"
	"math"
	"time"
)

// Level derives a user level from experience points:
// floor(sqrt(exp/100)) + 1. Level 1 at zero experience, monotonic in exp.
func Level(exp int64) int64 {
	if exp < 0 {
		exp = 0
	}
	return int64(math.Sqrt(float64(exp)/100)) + 1
}

// FormatUptime renders a seconds duration as "Xh Ym", dropping the hour part
// when it is zero.
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// RelativeTime renders a coarse "time ago" label using the largest nonzero
// unit, the way the activity feed shows transaction times.
func RelativeTime(at, now time.Time) string {
	elapsed := now.Sub(at)
	if elapsed < time.Minute {
		return "Just now"
	}
	if elapsed < time.Hour {
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	}
	if elapsed < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(elapsed.Hours())/24)
}
