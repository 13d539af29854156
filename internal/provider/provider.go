// Package provider sends a rendered prompt to an LLM vendor and returns
// the raw reply text.
//
// Three adapters are available: OpenAI (chat completions), Anthropic
// (messages) and Gemini (generateContent with model/version fallback).
// Router selects the adapter from the credential's provider.
//
// All adapters share the same request shape: a fixed system instruction,
// temperature 0.7 and at most 2000 output tokens. No adapter retries;
// Gemini's candidate search is the only multi-request path.
package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fixed request parameters.
const (
	temperature     = 0.7
	maxOutputTokens = 2000

	// defaultHTTPTimeout bounds a single HTTP exchange.
	defaultHTTPTimeout = 2 * time.Minute
)

// systemInstruction asks the model for the bare prompt text.
const systemInstruction = "You are a prompt engineering assistant. " +
	"Reply with the final prompt text only. Do not add explanations, " +
	"markdown fences or a JSON envelope."

// ErrEmptyResponse indicates the provider answered 2xx without any text.
var ErrEmptyResponse = errors.New("empty response")

// Credential is a provider API key resolved for one dispatch.
type Credential struct {
	Provider Name
	Secret   string
}

// String redacts the secret.
func (c Credential) String() string {
	if c.Secret == "" {
		return c.Provider.String() + ":<empty>"
	}
	return c.Provider.String() + ":<redacted>"
}

// Dispatcher sends prompt to a provider and returns the raw reply text.
// An empty model selects the adapter's default.
type Dispatcher interface {
	Dispatch(ctx context.Context, cred Credential, model, prompt string) (string, error)
}

// settings holds the options shared by every adapter.
type settings struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	model      string

	// Gemini only.
	geminiModels   []string
	geminiVersions []string
}

// Option configures an adapter.
type Option func(*settings)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(url string) Option {
	return func(s *settings) {
		if url != "" {
			s.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
// Ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 && s.httpClient == nil {
			s.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger for dispatch events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithDefaultModel overrides the model used when Dispatch receives none.
// For Gemini the model is tried before the built-in candidates.
func WithDefaultModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithGeminiModels replaces the Gemini fallback model list.
func WithGeminiModels(models ...string) Option {
	return func(s *settings) {
		if len(models) > 0 {
			s.geminiModels = append([]string(nil), models...)
		}
	}
}

// WithGeminiVersions replaces the Gemini API version list.
func WithGeminiVersions(versions ...string) Option {
	return func(s *settings) {
		if len(versions) > 0 {
			s.geminiVersions = append([]string(nil), versions...)
		}
	}
}

func newSettings(baseURL, model string, opts []Option) settings {
	s := settings{
		baseURL: baseURL,
		model:   model,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	// Create HTTP client after options are applied.
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return s
}
