// Package format renders values for terminal display.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Latency formats a request duration for display.
// Examples: "850ms", "1.2s", "1m05s"
func Latency(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d/time.Millisecond)
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%dm%02ds", m, s)
}

// Preview returns s on a single line, cut to at most n runes.
// Cut strings end with "...", which counts toward n.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// Timestamp formats t in local time for history listings.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
