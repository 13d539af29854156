package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// ---------------------------------------------------------------------------
// Tests for applyUse - preference merge rules
// ---------------------------------------------------------------------------

func TestApplyUse(t *testing.T) {
	t.Parallel()

	gemini := provider.Gemini
	openai := provider.OpenAI
	model := "gpt-4o"
	empty := ""
	fw := framework.RISE

	base := store.Preferences{Provider: provider.OpenAI, Model: "gpt-4o-mini", FrameworkID: framework.TAG}

	tests := []struct {
		name string
		opts useOptions
		want store.Preferences
	}{
		{
			name: "switching provider clears model",
			opts: useOptions{provider: &gemini},
			want: store.Preferences{Provider: provider.Gemini, FrameworkID: framework.TAG},
		},
		{
			name: "same provider keeps model",
			opts: useOptions{provider: &openai},
			want: base,
		},
		{
			name: "provider and model together",
			opts: useOptions{provider: &gemini, model: &model},
			want: store.Preferences{Provider: provider.Gemini, Model: "gpt-4o", FrameworkID: framework.TAG},
		},
		{
			name: "clear framework",
			opts: useOptions{framework: &empty},
			want: store.Preferences{Provider: provider.OpenAI, Model: "gpt-4o-mini"},
		},
		{
			name: "set framework",
			opts: useOptions{framework: &fw},
			want: store.Preferences{Provider: provider.OpenAI, Model: "gpt-4o-mini", FrameworkID: framework.RISE},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyUse(base, tt.opts); got != tt.want {
				t.Errorf("applyUse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Tests for UseCmd
// ---------------------------------------------------------------------------

func TestUseCmd_SavesAndPrints(t *testing.T) {
	t.Parallel()

	env, m := testEnv()

	if err := execute(UseCmd(env), "--provider", "anthropic", "-f", framework.PAIN); err != nil {
		t.Fatalf("use: %v", err)
	}
	got := m.store.prefs["tester"]
	if got.Provider != provider.Anthropic || got.FrameworkID != framework.PAIN {
		t.Errorf("saved prefs = %+v", got)
	}
	out := m.stdout.String()
	if !strings.Contains(out, "provider:  anthropic") || !strings.Contains(out, "framework: pain") {
		t.Errorf("stdout = %q", out)
	}
}

func TestUseCmd_NoFlagsOnlyPrints(t *testing.T) {
	t.Parallel()

	env, m := testEnv()

	if err := execute(UseCmd(env)); err != nil {
		t.Fatalf("use: %v", err)
	}
	if _, ok := m.store.prefs["tester"]; ok {
		t.Error("use without flags must not save")
	}
	if !strings.Contains(m.stdout.String(), "openai (default)") {
		t.Errorf("stdout = %q, want defaults", m.stdout.String())
	}
}

func TestUseCmd_Validation(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	if err := execute(UseCmd(env), "-f", "unknown"); !errors.Is(err, framework.ErrNotFound) {
		t.Errorf("error = %v, want framework.ErrNotFound", err)
	}

	env, _ = testEnv()
	if err := execute(UseCmd(env), "-p", "unknown"); !errors.Is(err, provider.ErrInvalidName) {
		t.Errorf("error = %v, want provider.ErrInvalidName", err)
	}
}
