package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// useOptions holds the preference changes requested by the use command.
// Nil fields are left unchanged.
type useOptions struct {
	provider  *provider.Name
	model     *string
	framework *string
}

func (o useOptions) empty() bool {
	return o.provider == nil && o.model == nil && o.framework == nil
}

// UseCmd creates the use command (save default provider, model and framework).
func UseCmd(env *Env) *cobra.Command {
	var provName, model, fw string

	cmd := &cobra.Command{
		Use:   "use",
		Short: "Show or save default provider, model and framework",
		Long: `Show or save the defaults used by generate.

Without flags, prints the saved preferences. Changing the provider without
--model clears the saved model, since model names are provider specific.
Pass an empty value to clear a setting.`,
		Example: `  promptforge use --provider gemini --framework tag
  promptforge use --model gpt-4o
  promptforge use`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts useOptions
			if cmd.Flags().Changed("provider") {
				var p provider.Name
				if provName != "" {
					parsed, err := provider.ParseName(provName)
					if err != nil {
						return err
					}
					p = parsed
				}
				opts.provider = &p
			}
			if cmd.Flags().Changed("model") {
				opts.model = &model
			}
			if cmd.Flags().Changed("framework") {
				if fw != "" {
					if _, err := framework.Get(fw); err != nil {
						return err
					}
				}
				opts.framework = &fw
			}
			return runUse(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&provName, "provider", "p", "", "Default provider: "+providerList())
	cmd.Flags().StringVarP(&model, "model", "m", "", "Default model for the provider")
	cmd.Flags().StringVarP(&fw, "framework", "f", "", "Default framework id")

	return cmd
}

// runUse handles the "use" command.
func runUse(ctx context.Context, env *Env, opts useOptions) error {
	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	prefs, err := sess.store.Preferences(ctx, sess.cfg.User)
	if err != nil {
		return err
	}

	if !opts.empty() {
		prefs = applyUse(prefs, opts)
		if err := sess.store.SavePreferences(ctx, sess.cfg.User, prefs); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Saved preferences for %s\n", sess.cfg.User)
	}

	fmt.Fprintf(env.Stdout, "provider:  %s\n", orUnset(prefs.Provider.String(), "openai (default)"))
	fmt.Fprintf(env.Stdout, "model:     %s\n", orUnset(prefs.Model, "provider default"))
	fmt.Fprintf(env.Stdout, "framework: %s\n", orUnset(prefs.FrameworkID, "none"))
	return nil
}

// applyUse merges opts into prefs.
func applyUse(prefs store.Preferences, opts useOptions) store.Preferences {
	if opts.provider != nil {
		if *opts.provider != prefs.Provider && opts.model == nil {
			prefs.Model = ""
		}
		prefs.Provider = *opts.provider
	}
	if opts.model != nil {
		prefs.Model = *opts.model
	}
	if opts.framework != nil {
		prefs.FrameworkID = *opts.framework
	}
	return prefs
}

func orUnset(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
