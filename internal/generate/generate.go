// Package generate runs the prompt generation pipeline: resolve
// preferences and credentials, build the instruction, dispatch it to a
// provider, normalize the reply and record the outcome in history.
//
// A Generator holds no mutable state and may be shared by goroutines.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-promptforge/internal/apierr"
	"github.com/alnah/go-promptforge/internal/framework"
	"github.com/alnah/go-promptforge/internal/normalize"
	"github.com/alnah/go-promptforge/internal/prompt"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// Credentials resolves the API key of a user for a provider.
// Implementations return an error matching store.ErrNotFound when none exists.
type Credentials interface {
	Credential(ctx context.Context, user string, p provider.Name) (provider.Credential, error)
}

// Preferences loads a user's saved defaults.
type Preferences interface {
	Preferences(ctx context.Context, user string) (store.Preferences, error)
}

// History records generations.
type History interface {
	StartHistory(ctx context.Context, e store.HistoryEntry) (string, error)
	FinishHistory(ctx context.Context, id, output string, status store.Status, errMsg string) error
}

// Compile-time interface compliance checks.
var (
	_ Credentials = (*store.Store)(nil)
	_ Preferences = (*store.Store)(nil)
	_ History     = (*store.Store)(nil)
)

// ErrNoFramework indicates that neither the request nor the saved
// preferences name a framework. It matches framework.ErrNotFound.
var ErrNoFramework = fmt.Errorf("%w: none selected", framework.ErrNotFound)

// Request is one generation request. Empty fields fall back to the user's
// preferences, then to built-in defaults.
type Request struct {
	FrameworkID string
	Task        string
	Tone        string
	Length      string
	Provider    provider.Name
	Model       string
}

// Result is the terminal outcome of one generation.
// When Success is false, ErrorMessage and Err describe the failure.
type Result struct {
	Success      bool
	PromptText   string
	ErrorMessage string
	Provider     provider.Name
	Model        string
	FrameworkID  string
	HistoryID    string
	Elapsed      time.Duration
	Err          error
}

// Generator runs the pipeline.
type Generator struct {
	creds      Credentials
	prefs      Preferences
	history    History
	dispatcher provider.Dispatcher
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for pipeline events.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithClock sets the time source used to measure elapsed time (for testing).
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithHistory enables history recording.
func WithHistory(h History) Option {
	return func(g *Generator) {
		g.history = h
	}
}

// New creates a Generator. prefs may be nil (no saved defaults).
func New(creds Credentials, prefs Preferences, dispatcher provider.Dispatcher, opts ...Option) *Generator {
	g := &Generator{
		creds:      creds,
		prefs:      prefs,
		dispatcher: dispatcher,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the pipeline once. It never panics on provider or storage
// failures; every failure is reported in the returned Result.
func (g *Generator) Generate(ctx context.Context, user string, req Request) Result {
	start := g.now()
	res := g.generate(ctx, user, req)
	res.Elapsed = g.now().Sub(start)

	log := g.logger.With().
		Str("provider", res.Provider.String()).
		Str("framework", res.FrameworkID).
		Dur("elapsed", res.Elapsed).
		Logger()
	if res.Success {
		log.Info().Msg("prompt generated")
	} else {
		log.Debug().Err(res.Err).Msg("generation failed")
	}
	return res
}

func (g *Generator) generate(ctx context.Context, user string, req Request) Result {
	prefs := g.loadPreferences(ctx, user)

	p := req.Provider
	if p.IsZero() {
		p = prefs.Provider
	}
	p = p.OrDefault()

	model := req.Model
	if model == "" && p == prefs.Provider {
		model = prefs.Model
	}
	fw := req.FrameworkID
	if fw == "" {
		fw = prefs.FrameworkID
	}

	res := Result{Provider: p, Model: model, FrameworkID: fw}
	if fw == "" {
		return fail(res, ErrNoFramework)
	}

	cred, err := g.credential(ctx, user, p)
	if err != nil {
		return fail(res, err)
	}

	text, err := prompt.Build(fw, req.Task, req.Tone, req.Length)
	if err != nil {
		return fail(res, err)
	}

	res.HistoryID = g.startHistory(ctx, store.HistoryEntry{
		User:        user,
		FrameworkID: fw,
		Provider:    p.String(),
		Model:       model,
		Input:       text,
	})

	raw, err := g.dispatcher.Dispatch(ctx, cred, model, text)
	if err != nil {
		res = fail(res, err)
		g.finishHistory(ctx, res.HistoryID, "", store.StatusFailed, res.ErrorMessage)
		return res
	}

	parsed := normalize.Parse(raw)
	if parsed.Kind == normalize.UnrecognizedJSON {
		g.logger.Warn().Str("provider", p.String()).Msg("provider returned JSON without a prompt field; using raw reply")
	}

	res.Success = true
	res.PromptText = parsed.Text
	g.finishHistory(ctx, res.HistoryID, parsed.Text, store.StatusCompleted, "")
	return res
}

func fail(res Result, err error) Result {
	res.Success = false
	res.Err = err
	res.ErrorMessage = err.Error()
	return res
}

func (g *Generator) loadPreferences(ctx context.Context, user string) store.Preferences {
	if g.prefs == nil {
		return store.Preferences{}
	}
	prefs, err := g.prefs.Preferences(ctx, user)
	if err != nil {
		g.logger.Warn().Err(err).Msg("could not load preferences; using defaults")
		return store.Preferences{}
	}
	return prefs
}

func (g *Generator) credential(ctx context.Context, user string, p provider.Name) (provider.Credential, error) {
	cred, err := g.creds.Credential(ctx, user, p)
	switch {
	case errors.Is(err, store.ErrNotFound), err == nil && cred.Secret == "":
		return provider.Credential{}, fmt.Errorf("no API key for %s: %w", p, apierr.ErrCredentialMissing)
	case err != nil:
		return provider.Credential{}, fmt.Errorf("load %s credential: %w", p, err)
	}
	cred.Provider = p
	return cred, nil
}

// startHistory returns "" when history is disabled or the write failed.
func (g *Generator) startHistory(ctx context.Context, e store.HistoryEntry) string {
	if g.history == nil {
		return ""
	}
	id, err := g.history.StartHistory(ctx, e)
	if err != nil {
		g.logger.Warn().Err(err).Msg("could not record history")
		return ""
	}
	return id
}

func (g *Generator) finishHistory(ctx context.Context, id, output string, status store.Status, errMsg string) {
	if g.history == nil || id == "" {
		return
	}
	// The row must reach a terminal status even when the caller cancelled.
	if err := g.history.FinishHistory(context.WithoutCancel(ctx), id, output, status, errMsg); err != nil {
		g.logger.Warn().Err(err).Str("history_id", id).Msg("could not update history")
	}
}
