package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-promptforge/internal/store"
)

func TestHistoryLine(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 2, 3, 10, 0, 0, 0, time.Local)

	ok := historyLine(store.HistoryEntry{
		CreatedAt: created, Status: store.StatusCompleted, Provider: "openai",
		FrameworkID: "tag", Output: "Act as\nan editor.",
	})
	if !strings.HasPrefix(ok, "2026-02-03 10:00") || !strings.HasSuffix(ok, "Act as an editor.") {
		t.Errorf("completed line = %q", ok)
	}

	failed := historyLine(store.HistoryEntry{
		CreatedAt: created, Status: store.StatusFailed, Provider: "gemini",
		FrameworkID: "ape", Error: "rate limit exceeded",
	})
	if !strings.HasSuffix(failed, "error: rate limit exceeded") {
		t.Errorf("failed line = %q", failed)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	env, m := testEnv()
	ctx := context.Background()
	for _, out := range []string{"first", "second", "third"} {
		id, err := m.store.StartHistory(ctx, store.HistoryEntry{User: "tester", Provider: "openai", FrameworkID: "tag"})
		if err != nil {
			t.Fatal(err)
		}
		if err := m.store.FinishHistory(ctx, id, out, store.StatusCompleted, ""); err != nil {
			t.Fatal(err)
		}
	}

	if err := execute(HistoryCmd(env), "-n", "2"); err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(m.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], "third") || !strings.HasSuffix(lines[1], "second") {
		t.Errorf("lines = %q, want newest first", lines)
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	t.Parallel()

	env, m := testEnv()
	if err := execute(HistoryCmd(env)); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(m.stderr.String(), "No history") {
		t.Errorf("stderr = %q", m.stderr.String())
	}
}

func TestHistoryCmd_InvalidLimit(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	if err := execute(HistoryCmd(env), "-n", "0"); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("error = %v, want ErrInvalidLimit", err)
	}
}
