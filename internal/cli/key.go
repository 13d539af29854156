package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/format"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// KeyCmd creates the key command with subcommands.
// The env parameter provides injectable dependencies for testing.
func KeyCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage provider API keys",
		Long: `Manage provider API keys.

Keys are encrypted with the configured passphrase (config key "secret" or
PROMPTFORGE_SECRET) and stored in the local database. When no key is stored,
OPENAI_API_KEY, GEMINI_API_KEY and ANTHROPIC_API_KEY are used instead.`,
		Example: `  promptforge key set openai sk-...
  echo "$GEMINI_KEY" | promptforge key set gemini
  promptforge key list
  promptforge key remove anthropic`,
	}

	cmd.AddCommand(keySetCmd(env))
	cmd.AddCommand(keyRemoveCmd(env))
	cmd.AddCommand(keyListCmd(env))

	return cmd
}

func keySetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Store an API key",
		Long: `Store an API key. The key is read from stdin when not given as argument,
which keeps it out of shell history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider.ParseName(args[0])
			if err != nil {
				return err
			}
			var key string
			if len(args) == 2 {
				key = args[1]
			} else if key, err = readLine(env.Stdin); err != nil {
				return err
			}
			return runKeySet(cmd.Context(), env, p, key)
		},
	}
}

func keyRemoveCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := provider.ParseName(args[0])
			if err != nil {
				return err
			}
			return runKeyRemove(cmd.Context(), env, p)
		},
	}
}

func keyListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which providers have a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(cmd.Context(), env)
		},
	}
}

// runKeySet handles the "key set" command.
func runKeySet(ctx context.Context, env *Env, p provider.Name, key string) error {
	if key == "" {
		return ErrEmptySecret
	}

	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.SaveCredential(ctx, sess.cfg.User, p, key); err != nil {
		if errors.Is(err, store.ErrSealerMissing) {
			return fmt.Errorf("%w (set one with: promptforge config set secret <passphrase>)", err)
		}
		return err
	}
	fmt.Fprintf(env.Stderr, "Saved %s key for %s\n", p, sess.cfg.User)
	return nil
}

// runKeyRemove handles the "key remove" command.
func runKeyRemove(ctx context.Context, env *Env, p provider.Name) error {
	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.store.RemoveCredential(ctx, sess.cfg.User, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no stored %s key for %s: %w", p, sess.cfg.User, err)
		}
		return err
	}
	fmt.Fprintf(env.Stderr, "Removed %s key for %s\n", p, sess.cfg.User)
	return nil
}

// runKeyList handles the "key list" command. Secrets are never printed.
func runKeyList(ctx context.Context, env *Env) error {
	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	infos, err := sess.store.ListCredentials(ctx, sess.cfg.User)
	if err != nil {
		return err
	}
	stored := make(map[provider.Name]store.CredentialInfo, len(infos))
	for _, info := range infos {
		stored[info.Provider] = info
	}

	for _, p := range provider.Names() {
		source := "-"
		if info, ok := stored[p]; ok {
			source = "stored " + format.Timestamp(info.UpdatedAt)
		} else if env.Getenv(envKeyFor(p)) != "" {
			source = "from " + envKeyFor(p)
		}
		fmt.Fprintf(env.Stdout, "%-10s %s\n", p, source)
	}
	return nil
}
