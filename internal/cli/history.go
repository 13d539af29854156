package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/format"
	"github.com/alnah/go-promptforge/internal/store"
)

const (
	defaultHistoryLimit = 10
	previewRunes        = 60
)

// HistoryCmd creates the history command.
func HistoryCmd(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generations",
		Example: `  promptforge history
  promptforge history -n 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("%w: %d (must be positive)", ErrInvalidLimit, limit)
			}
			return runHistory(cmd.Context(), env, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of entries to show")

	return cmd
}

// runHistory handles the "history" command.
func runHistory(ctx context.Context, env *Env, limit int) error {
	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	entries, err := sess.store.RecentHistory(ctx, sess.cfg.User, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(env.Stderr, "No history yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(env.Stdout, historyLine(e))
	}
	return nil
}

// historyLine renders one entry: time, status, provider, framework, preview.
func historyLine(e store.HistoryEntry) string {
	text := e.Output
	if e.Status == store.StatusFailed {
		text = "error: " + e.Error
	}
	return fmt.Sprintf("%s  %-10s %-9s %-5s %s",
		format.Timestamp(e.CreatedAt), e.Status, e.Provider, e.FrameworkID,
		format.Preview(text, previewRunes))
}
