package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-promptforge/internal/config"
	"github.com/alnah/go-promptforge/internal/generate"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/secret"
	"github.com/alnah/go-promptforge/internal/store"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string
	Now    func() time.Time

	// Verbose forces debug logging regardless of log_level.
	Verbose bool

	// Factories for domain objects
	ConfigLoader      ConfigLoader
	StoreOpener       StoreOpener
	DispatcherFactory DispatcherFactory
}

// ConfigLoader loads and persists configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
	Save(key, value string) error
}

// Store is the persistence surface used by the commands.
type Store interface {
	generate.Credentials
	generate.Preferences
	generate.History
	SaveCredential(ctx context.Context, user string, p provider.Name, apiKey string) error
	RemoveCredential(ctx context.Context, user string, p provider.Name) error
	ListCredentials(ctx context.Context, user string) ([]store.CredentialInfo, error)
	SavePreferences(ctx context.Context, user string, prefs store.Preferences) error
	RecentHistory(ctx context.Context, user string, limit int) ([]store.HistoryEntry, error)
	Close() error
}

// StoreOpener opens the local database described by cfg.
type StoreOpener interface {
	Open(ctx context.Context, cfg config.Config) (Store, error)
}

// DispatcherFactory creates the provider dispatcher.
type DispatcherFactory interface {
	NewDispatcher(cfg config.Config, logger zerolog.Logger) provider.Dispatcher
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithStoreOpener sets the store opener.
func WithStoreOpener(o StoreOpener) EnvOption {
	return func(e *Env) {
		e.StoreOpener = o
	}
}

// WithDispatcherFactory sets the dispatcher factory.
func WithDispatcherFactory(f DispatcherFactory) EnvOption {
	return func(e *Env) {
		e.DispatcherFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
		Stdin:             os.Stdin,
		Getenv:            os.Getenv,
		Now:               time.Now,
		ConfigLoader:      &defaultConfigLoader{getenv: os.Getenv},
		StoreOpener:       &defaultStoreOpener{},
		DispatcherFactory: &defaultDispatcherFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	if l, ok := env.ConfigLoader.(*defaultConfigLoader); ok {
		l.getenv = env.Getenv
	}
	return env
}

// Logger builds the console logger for one command run.
// An unparsable level falls back to warn.
func (e *Env) Logger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if e.Verbose {
		lvl = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: e.Stderr, NoColor: true, TimeFormat: time.TimeOnly}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct {
	getenv func(string) string
}

func (l defaultConfigLoader) Load() (config.Config, error) {
	path, err := config.Path(l.getenv)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

func (l defaultConfigLoader) Save(key, value string) error {
	path, err := config.Path(l.getenv)
	if err != nil {
		return err
	}
	return config.Save(path, key, value)
}

// defaultStoreOpener implements StoreOpener with SQLite. Without a secret
// passphrase the store opens without a sealer and credential operations
// report store.ErrSealerMissing.
type defaultStoreOpener struct{}

func (defaultStoreOpener) Open(ctx context.Context, cfg config.Config) (Store, error) {
	var sealer *secret.Sealer
	if cfg.Secret != "" {
		s, err := secret.NewSealer(cfg.Secret)
		if err != nil {
			return nil, fmt.Errorf("credential passphrase: %w", err)
		}
		sealer = s
	}
	st, err := store.Open(ctx, cfg.Database, sealer)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// defaultDispatcherFactory implements DispatcherFactory with the three
// vendor adapters behind a Router.
type defaultDispatcherFactory struct{}

func (defaultDispatcherFactory) NewDispatcher(cfg config.Config, logger zerolog.Logger) provider.Dispatcher {
	common := func(baseURL string) []provider.Option {
		return []provider.Option{
			provider.WithTimeout(cfg.Timeout),
			provider.WithLogger(logger),
			provider.WithBaseURL(baseURL),
		}
	}
	return provider.NewRouter(map[provider.Name]provider.Dispatcher{
		provider.OpenAI:    provider.NewOpenAIDispatcher(common(cfg.OpenAIBaseURL)...),
		provider.Gemini:    provider.NewGeminiDispatcher(common(cfg.GeminiBaseURL)...),
		provider.Anthropic: provider.NewAnthropicDispatcher(common(cfg.AnthropicBaseURL)...),
	})
}

// Compile-time interface verification.
var (
	_ ConfigLoader      = (*defaultConfigLoader)(nil)
	_ StoreOpener       = (*defaultStoreOpener)(nil)
	_ DispatcherFactory = (*defaultDispatcherFactory)(nil)
	_ Store             = (*store.Store)(nil)
)
