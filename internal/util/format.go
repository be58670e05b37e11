package util

import (
	"fmt"
	"math"
	"time"
)

// FormatMs formats a millisecond value for tables. NaN renders as "-".
// Examples: 812.4 -> "812ms", 1534 -> "1.53s"
func FormatMs(ms float64) string {
	if math.IsNaN(ms) {
		return "-"
	}
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// FormatPercent formats a ratio in [0, 1] as a percentage.
// Example: 0.8125 -> "81.3%"
func FormatPercent(r float64) string {
	if math.IsNaN(r) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", r*100)
}

// FormatDuration rounds a duration to whole seconds for summaries.
// Examples: 90s -> "1m30s", 0 -> "0s"
func FormatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// FormatDateISO formats a time to ISO date format (2006-01-02).
// The zero time renders as "-".
func FormatDateISO(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// ParseTimeRFC3339 parses an RFC3339 timestamp string to time.Time.
// Returns zero time if parsing fails.
func ParseTimeRFC3339(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
