package cli

import (
	"strings"
	"testing"

	"github.com/alnah/go-promptforge/internal/framework"
)

func TestFrameworksCmd(t *testing.T) {
	t.Parallel()

	env, m := testEnv()
	if err := execute(FrameworksCmd(env)); err != nil {
		t.Fatalf("frameworks: %v", err)
	}

	out := m.stdout.String()
	ids := framework.IDs()
	last := -1
	for _, id := range ids {
		at := strings.Index(out, "\n"+id+" ")
		if id == ids[0] {
			at = strings.Index(out, id+" ")
		}
		if at <= last {
			t.Errorf("framework %q missing or out of order", id)
		}
		last = at
	}
	if !strings.Contains(out, "T.A.G Framework") || !strings.Contains(out, "Task, Action, Goal") {
		t.Errorf("output lacks display names or slots:\n%s", out)
	}
	if !strings.Contains(out, "Tones:   professional") || !strings.Contains(out, "Lengths: short") {
		t.Errorf("output lacks tones or lengths:\n%s", out)
	}
}
