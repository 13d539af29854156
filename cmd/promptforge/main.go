package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/apierr"
	"github.com/alnah/go-promptforge/internal/cli"
	"github.com/alnah/go-promptforge/internal/config"
	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/prompt"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/secret"
	"github.com/alnah/go-promptforge/internal/store"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitProvider   = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd(cli.DefaultEnv())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newRootCmd wires every subcommand to env.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "promptforge",
		Short:   "Turn task descriptions into engineered prompts with OpenAI, Gemini or Anthropic",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(cli.GenerateCmd(env))
	rootCmd.AddCommand(cli.FrameworksCmd(env))
	rootCmd.AddCommand(cli.KeyCmd(env))
	rootCmd.AddCommand(cli.UseCmd(env))
	rootCmd.AddCommand(cli.HistoryCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, apierr.ErrCredentialMissing) || errors.Is(err, provider.ErrInvalidName) ||
		errors.Is(err, provider.ErrUnsupportedProvider) || errors.Is(err, store.ErrSealerMissing) ||
		errors.Is(err, secret.ErrEmptyPassphrase) || errors.Is(err, secret.ErrDecrypt) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, framework.ErrNotFound) || errors.Is(err, prompt.ErrUnsupportedTone) ||
		errors.Is(err, prompt.ErrUnsupportedLength) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, cli.ErrEmptyTask) || errors.Is(err, cli.ErrEmptySecret) ||
		errors.Is(err, cli.ErrInvalidLimit) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, store.ErrNotFound) {
		return ExitValidation
	}

	// Provider errors (ExitProvider = 5).
	if errors.Is(err, apierr.ErrProviderUnreachable) || errors.Is(err, apierr.ErrAllFallbacksExhausted) ||
		errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrServer) || errors.Is(err, apierr.ErrBadRequest) ||
		errors.Is(err, provider.ErrEmptyResponse) || errors.Is(err, context.DeadlineExceeded) {
		return ExitProvider
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
