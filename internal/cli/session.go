package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alnah/go-promptforge/internal/config"
	"github.com/alnah/go-promptforge/internal/generate"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// Environment variables used as credential fallback when the store has
// no active key for a provider.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// envKeyFor returns the fallback environment variable of p.
func envKeyFor(p provider.Name) string {
	switch p {
	case provider.Gemini:
		return EnvGeminiAPIKey
	case provider.Anthropic:
		return EnvAnthropicAPIKey
	default:
		return EnvOpenAIAPIKey
	}
}

// session bundles what a store-backed command needs for one run.
type session struct {
	cfg    config.Config
	store  Store
	logger zerolog.Logger
}

// openSession loads config, builds the logger and opens the store.
// The caller must call close.
func openSession(ctx context.Context, env *Env) (*session, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := env.Logger(cfg.LogLevel)

	st, err := env.StoreOpener.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug().Str("database", cfg.Database).Str("user", cfg.User).Msg("store opened")

	return &session{cfg: cfg, store: st, logger: logger}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("close store")
	}
}

// credentials resolves keys from the store, then from the environment.
func (s *session) credentials(getenv func(string) string) envCredentials {
	return envCredentials{store: s.store, getenv: getenv, logger: s.logger}
}

// envCredentials implements generate.Credentials with an environment
// variable fallback. Store errors other than "no key" and "no passphrase"
// are returned as-is.
type envCredentials struct {
	store  generate.Credentials
	getenv func(string) string
	logger zerolog.Logger
}

var _ generate.Credentials = envCredentials{}

func (c envCredentials) Credential(ctx context.Context, user string, p provider.Name) (provider.Credential, error) {
	cred, err := c.store.Credential(ctx, user, p)
	if err == nil && cred.Secret != "" {
		return cred, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrSealerMissing) {
		return provider.Credential{}, err
	}

	name := envKeyFor(p)
	if key := c.getenv(name); key != "" {
		c.logger.Debug().Str("provider", p.String()).Str("source", name).Msg("using API key from environment")
		return provider.Credential{Provider: p, Secret: key}, nil
	}
	return provider.Credential{}, fmt.Errorf("%s credential: %w", p, store.ErrNotFound)
}

// available returns the providers with a usable key, in canonical order.
func (c envCredentials) available(ctx context.Context, user string) []provider.Name {
	var out []provider.Name
	for _, p := range provider.Names() {
		if _, err := c.Credential(ctx, user, p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
