package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/config"
)

// maskedValue replaces the passphrase in listings.
const maskedValue = "********"

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: fmt.Sprintf(`Manage persistent configuration settings.

Configuration is stored in $XDG_CONFIG_HOME/promptforge/config.toml
(~/.config/promptforge/config.toml by default). Every key can be overridden
with a %s<KEY> environment variable, e.g. %sLOG_LEVEL=debug.

Supported settings:
  %s`, config.EnvPrefix, config.EnvPrefix, strings.Join(config.ValidKeys(), "\n  ")),
		Example: `  promptforge config set secret "correct horse battery staple"
  promptforge config set timeout 90s
  promptforge config get user
  promptforge config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The output_dir directory will be created if it doesn't exist.`,
		Example: `  promptforge config set output_dir ~/Documents/prompts
  promptforge config set openai_base_url http://localhost:8080`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the effective value of a configuration key.

Prints the value to stdout, or nothing if not set.`,
		Example: `  promptforge config get database`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List the effective configuration: defaults, file values and
environment overrides combined. The passphrase is masked.`,
		Example: `  promptforge config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.Validate(key, value); err != nil {
		return err
	}

	// Key-specific validation.
	switch key {
	case config.KeyOutputDir, config.KeyDatabase:
		// Store the expanded path for consistency.
		value = config.ExpandPath(value)
		if key == config.KeyOutputDir {
			if err := config.EnsureOutputDir(value); err != nil {
				return fmt.Errorf("invalid output_dir: %w", err)
			}
		}
	}

	if err := env.ConfigLoader.Save(key, value); err != nil {
		return err
	}

	shown := value
	if key == config.KeySecret {
		shown = maskedValue
	}
	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, shown)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.ValidKeys(), ", "))
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	if value := cfg.Value(key); value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	values := cfg.Values()
	for _, key := range config.ValidKeys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		if key == config.KeySecret {
			value = maskedValue
		}
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
	}
	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(config.ValidKeys(), key)
}
