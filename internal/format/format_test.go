package format_test

// Notes:
// - Negative durations are not tested: latencies are always measured forward.
// - Preview counts runes, so multi-byte input is covered explicitly.

import (
	"testing"
	"time"

	"github.com/alnah/go-promptforge/internal/format"
)

// ---------------------------------------------------------------------------
// TestLatency - Formats request latency
// ---------------------------------------------------------------------------

func TestLatency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{name: "zero", input: 0, want: "0ms"},
		{name: "sub-second", input: 850 * time.Millisecond, want: "850ms"},
		{name: "boundary: exactly 1 second", input: time.Second, want: "1.0s"},
		{name: "seconds with fraction", input: 1200 * time.Millisecond, want: "1.2s"},
		{name: "boundary: exactly 1 minute", input: time.Minute, want: "1m00s"},
		{name: "minutes and seconds", input: time.Minute + 5*time.Second, want: "1m05s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := format.Latency(tt.input)
			if got != tt.want {
				t.Errorf("Latency(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPreview - Single-line, rune-safe truncation
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "short stays intact", input: "hello", n: 10, want: "hello"},
		{name: "exact length", input: "hello", n: 5, want: "hello"},
		{name: "truncated with ellipsis", input: "hello world", n: 8, want: "hello..."},
		{name: "collapses whitespace", input: "a\n\n  b\tc", n: 20, want: "a b c"},
		{name: "multi-byte runes", input: "éèêëàâ", n: 5, want: "éè..."},
		{name: "tiny limit", input: "abcdef", n: 2, want: "ab"},
		{name: "zero limit", input: "abc", n: 0, want: ""},
		{name: "empty", input: "", n: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := format.Preview(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	if got := format.Timestamp(time.Time{}); got != "-" {
		t.Errorf("Timestamp(zero) = %q, want \"-\"", got)
	}
	ts := time.Date(2026, 3, 4, 5, 6, 0, 0, time.Local)
	if got := format.Timestamp(ts); got != "2026-03-04 05:06" {
		t.Errorf("Timestamp() = %q", got)
	}
}
