// Package prompt builds the instruction text sent to a provider from a
// framework id, a task description and optional style settings.
//
// Build is deterministic and pure: the same inputs always produce the same
// output, so it is safe to call from any number of goroutines.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alnah/go-promptforge/internal/framework"
)

// Placeholders recognized in the instruction template.
const (
	placeholderTask      = "{{task}}"
	placeholderFramework = "{{framework}}"
	placeholderTone      = "{{tone}}"
	placeholderLength    = "{{length}}"
)

// instruction is the shared template. The framework listing is filled in at init.
var instruction string

const instructionHead = `You are an expert prompt engineer. Rewrite the task below into a single,
ready-to-use prompt structured with the selected framework.

Selected framework: {{framework}}

Task:
{{task}}

{{tone}}
{{length}}

Available frameworks:
`

const instructionTail = `
Rules:
- Fill every component of the selected framework with concrete content derived from the task
- Keep the user's intent; do not invent requirements
- Honor the requested tone and length when given
- Return only the final prompt text, with no explanation and no JSON wrapper`

func init() {
	var b strings.Builder
	b.WriteString(instructionHead)
	for _, t := range framework.All() {
		fmt.Fprintf(&b, "- %s: %s\n", t.DisplayName, t.Components())
	}
	fmt.Fprintf(&b, "\nSupported tones: %s\n", strings.Join(tones, ", "))
	fmt.Fprintf(&b, "Supported lengths: %s\n", strings.Join(lengths, ", "))
	b.WriteString(instructionTail)
	instruction = b.String()
}

// Build renders the instruction for frameworkID and task.
// tone and length are optional; empty values drop their line entirely.
// Values are substituted verbatim in a single pass, so placeholder text
// inside task is never expanded.
//
// Returns framework.ErrNotFound (wrapped) and an empty string when
// frameworkID is not registered.
func Build(frameworkID, task, tone, length string) (string, error) {
	tpl, err := framework.Get(frameworkID)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	r := strings.NewReplacer(
		placeholderTask, task,
		placeholderFramework, tpl.DisplayName,
		placeholderTone, styleLine("Tone", tone),
		placeholderLength, styleLine("Length", length),
	)
	return collapseBlankLines(r.Replace(instruction)), nil
}

func styleLine(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// collapseBlankLines reduces runs of blank lines to a single blank line
// and trims surrounding whitespace. Whitespace-only lines count as blank.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
