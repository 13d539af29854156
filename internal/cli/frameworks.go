package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/prompt"
)

// FrameworksCmd creates the frameworks command (list the registry).
func FrameworksCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "frameworks",
		Short:   "List prompt frameworks, tones and lengths",
		Example: `  promptforge frameworks`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrameworks(env)
		},
	}
}

func runFrameworks(env *Env) error {
	for _, t := range framework.All() {
		if _, err := fmt.Fprintf(env.Stdout, "%-6s %-20s %s\n", t.ID, t.DisplayName, t.Components()); err != nil {
			return err
		}
	}
	fmt.Fprintf(env.Stdout, "\nTones:   %s\n", strings.Join(prompt.Tones(), ", "))
	fmt.Fprintf(env.Stdout, "Lengths: %s\n", strings.Join(prompt.Lengths(), ", "))
	return nil
}
