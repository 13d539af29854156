package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-promptforge/internal/apierr"
	"github.com/alnah/go-promptforge/internal/config"
	"github.com/alnah/go-promptforge/internal/format"
	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/generate"
	"github.com/alnah/go-promptforge/internal/prompt"
	"github.com/alnah/go-promptforge/internal/provider"
)

// generateOptions holds validated options for the generate command.
type generateOptions struct {
	task      string
	framework string
	tone      prompt.Tone
	length    prompt.Length
	provider  provider.Name
	model     string
	output    string
	compare   bool
}

// GenerateCmd creates the generate command.
// The env parameter provides injectable dependencies for testing.
func GenerateCmd(env *Env) *cobra.Command {
	var (
		fw       string
		tone     string
		length   string
		provName string
		model    string
		output   string
		compare  bool
	)

	cmd := &cobra.Command{
		Use:   "generate [task...]",
		Short: "Generate an engineered prompt from a task description",
		Long: fmt.Sprintf(`Generate an engineered prompt from a task description.

The task is read from the arguments, or from stdin when none are given.
The prompt is printed to stdout, or written to --output (never overwritten).

Flags left empty fall back to the preferences saved with "use", then to
OpenAI with its default model.

Frameworks: %s
Tones:      %s
Lengths:    %s`,
			strings.Join(framework.IDs(), ", "),
			strings.Join(prompt.Tones(), ", "),
			strings.Join(prompt.Lengths(), ", ")),
		Example: `  promptforge generate -f tag "write a launch email for our new API"
  echo "summarize a research paper" | promptforge generate -f rtf --tone formal
  promptforge generate -f care -p gemini -m gemini-1.5-pro "plan a workshop"
  promptforge generate -f bab --compare "onboarding checklist" -o prompts.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				var err error
				if task, err = readAll(env.Stdin); err != nil {
					return err
				}
			}
			opts, err := parseGenerateOptions(task, fw, tone, length, provName, model, output, compare)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&fw, "framework", "f", "", "Prompt framework id (see 'promptforge frameworks')")
	cmd.Flags().StringVar(&tone, "tone", "", "Tone: "+strings.Join(prompt.Tones(), ", "))
	cmd.Flags().StringVar(&length, "length", "", "Length: "+strings.Join(prompt.Lengths(), ", "))
	cmd.Flags().StringVarP(&provName, "provider", "p", "", "LLM provider: "+providerList())
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default: preference, then provider default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the prompt to this file instead of stdout")
	cmd.Flags().BoolVar(&compare, "compare", false, "Generate with every provider that has an API key")

	cmd.MarkFlagsMutuallyExclusive("compare", "provider")
	cmd.MarkFlagsMutuallyExclusive("compare", "model")

	return cmd
}

// parseGenerateOptions validates and parses CLI inputs into generateOptions.
// All parsing happens at the CLI boundary.
func parseGenerateOptions(task, fw, tone, length, provName, model, output string, compare bool) (generateOptions, error) {
	if task == "" {
		return generateOptions{}, fmt.Errorf("%w (pass it as arguments or on stdin)", ErrEmptyTask)
	}

	// An empty framework falls back to the saved preference.
	if fw != "" {
		if _, err := framework.Get(fw); err != nil {
			return generateOptions{}, fmt.Errorf("%w (available: %s)", err, strings.Join(framework.IDs(), ", "))
		}
	}

	parsedTone, err := prompt.ParseTone(tone)
	if err != nil {
		return generateOptions{}, err
	}
	parsedLength, err := prompt.ParseLength(length)
	if err != nil {
		return generateOptions{}, err
	}

	var parsedProvider provider.Name
	if provName != "" {
		if parsedProvider, err = provider.ParseName(provName); err != nil {
			return generateOptions{}, err
		}
	}

	return generateOptions{
		task:      task,
		framework: fw,
		tone:      parsedTone,
		length:    parsedLength,
		provider:  parsedProvider,
		model:     strings.TrimSpace(model),
		output:    output,
		compare:   compare,
	}, nil
}

// runGenerate executes the generate command with validated options.
func runGenerate(ctx context.Context, env *Env, opts generateOptions) error {
	sess, err := openSession(ctx, env)
	if err != nil {
		return err
	}
	defer sess.close()

	// === VALIDATION (fail-fast) ===

	var output string
	if opts.output != "" {
		output = config.ResolveOutputPath(opts.output, sess.cfg.OutputDir, "")
		if err := checkOutputAbsent(output); err != nil {
			return err
		}
	}

	// === GENERATE ===

	creds := sess.credentials(env.Getenv)
	gen := generate.New(creds, sess.store,
		env.DispatcherFactory.NewDispatcher(sess.cfg, sess.logger),
		generate.WithLogger(sess.logger),
		generate.WithClock(env.Now),
		generate.WithHistory(sess.store),
	)

	req := generate.Request{
		FrameworkID: opts.framework,
		Task:        opts.task,
		Tone:        opts.tone.String(),
		Length:      opts.length.String(),
		Provider:    opts.provider,
		Model:       opts.model,
	}

	var content string
	if opts.compare {
		providers := creds.available(ctx, sess.cfg.User)
		if len(providers) == 0 {
			return fmt.Errorf("%w: no provider has an API key (set one with: promptforge key set <provider>)",
				apierr.ErrCredentialMissing)
		}
		fmt.Fprintf(env.Stderr, "Comparing %d providers...\n", len(providers))

		results := gen.Compare(ctx, sess.cfg.User, req, providers)
		if err := compareError(results); err != nil {
			return err
		}
		for _, res := range results {
			if !res.Success {
				fmt.Fprintf(env.Stderr, "Warning: %s failed: %s\n", res.Provider, res.ErrorMessage)
			}
		}
		content = renderComparison(results)
	} else {
		fmt.Fprintln(env.Stderr, "Generating prompt...")

		res := gen.Generate(ctx, sess.cfg.User, req)
		if !res.Success {
			return withHint(res)
		}
		fmt.Fprintf(env.Stderr, "Done in %s (provider: %s, model: %s, framework: %s)\n",
			format.Latency(res.Elapsed), res.Provider, modelLabel(res.Model), res.FrameworkID)
		content = res.PromptText + "\n"
	}

	// === WRITE OUTPUT ===

	if output == "" {
		_, err := io.WriteString(env.Stdout, content)
		return err
	}
	if err := writeFileAtomic(output, content); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Saved to %s\n", output)
	return nil
}

// withHint adds a remediation hint to credential and framework failures.
func withHint(res generate.Result) error {
	switch {
	case errors.Is(res.Err, apierr.ErrCredentialMissing):
		return fmt.Errorf("%w (set it with: promptforge key set %s, or export %s)",
			res.Err, res.Provider, envKeyFor(res.Provider))
	case errors.Is(res.Err, generate.ErrNoFramework):
		return fmt.Errorf("%w (pass --framework or save one with: promptforge use --framework <id>; available: %s)",
			res.Err, strings.Join(framework.IDs(), ", "))
	}
	return res.Err
}

// compareError returns the joined failures when no provider succeeded.
func compareError(results []generate.Result) error {
	errs := make([]error, 0, len(results))
	for _, res := range results {
		if res.Success {
			return nil
		}
		// Every provider shares the request, so report a missing framework once.
		if errors.Is(res.Err, generate.ErrNoFramework) {
			return withHint(res)
		}
		errs = append(errs, fmt.Errorf("%s: %w", res.Provider, res.Err))
	}
	return errors.Join(errs...)
}

// renderComparison formats one Markdown section per provider.
func renderComparison(results []generate.Result) string {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s (%s, %s)\n\n", res.Provider, modelLabel(res.Model), format.Latency(res.Elapsed))
		if res.Success {
			b.WriteString(res.PromptText)
		} else {
			fmt.Fprintf(&b, "_failed: %s_", res.ErrorMessage)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func modelLabel(model string) string {
	if model == "" {
		return "default model"
	}
	return model
}

// providerList returns the provider names for help text.
func providerList() string {
	names := provider.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return strings.Join(out, ", ")
}
