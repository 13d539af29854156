package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// Gemini API configuration.
const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini fallback candidates, tried model-major: every version of the first
// model, then every version of the next one.
var (
	defaultGeminiModels   = []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}
	defaultGeminiVersions = []string{"v1beta", "v1"}
)

// Candidate is one (model, API version) pair of the Gemini fallback search.
type Candidate struct {
	Model      string
	APIVersion string
}

func (c Candidate) String() string {
	return c.APIVersion + "/" + c.Model
}

// Candidates returns the ordered attempt list. A non-empty preferred model
// is tried first with every version and removed from the rest of the list.
func Candidates(preferred string, models, versions []string) []Candidate {
	ordered := make([]string, 0, len(models)+1)
	if preferred != "" {
		ordered = append(ordered, preferred)
	}
	for _, m := range models {
		if m != preferred {
			ordered = append(ordered, m)
		}
	}

	out := make([]Candidate, 0, len(ordered)*len(versions))
	for _, m := range ordered {
		for _, v := range versions {
			out = append(out, Candidate{Model: m, APIVersion: v})
		}
	}
	return out
}

// Compile-time interface compliance check.
var _ Dispatcher = (*GeminiDispatcher)(nil)

// GeminiDispatcher sends prompts to the Gemini generateContent API,
// walking the candidate list until one attempt succeeds.
type GeminiDispatcher struct {
	settings
}

// NewGeminiDispatcher creates a Gemini adapter.
func NewGeminiDispatcher(opts ...Option) *GeminiDispatcher {
	d := &GeminiDispatcher{settings: newSettings(defaultGeminiBaseURL, "", opts)}
	if d.geminiModels == nil {
		d.geminiModels = defaultGeminiModels
	}
	if d.geminiVersions == nil {
		d.geminiVersions = defaultGeminiVersions
	}
	return d
}

// Dispatch tries each candidate in order and returns the first non-empty reply.
// When all fail the error matches apierr.ErrAllFallbacksExhausted.
func (d *GeminiDispatcher) Dispatch(ctx context.Context, cred Credential, model, prompt string) (string, error) {
	if cred.Secret == "" {
		return "", fmt.Errorf("%s: %w", ProviderGemini, apierr.ErrCredentialMissing)
	}
	if model == "" {
		model = d.model
	}

	// v1 rejects systemInstruction, so the instruction travels in the user text.
	text := systemInstruction + "\n\n" + prompt
	candidates := Candidates(model, d.geminiModels, d.geminiVersions)

	out, err := apierr.FirstSuccess(ctx, candidates, func(ctx context.Context, c Candidate) (string, error) {
		return d.attempt(ctx, cred.Secret, c, text)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// attempt performs one generateContent call against a single candidate.
func (d *GeminiDispatcher) attempt(ctx context.Context, apiKey string, c Candidate, text string) (string, error) {
	log := d.logger.With().Str("provider", ProviderGemini).Str("candidate", c.String()).Logger()
	log.Debug().Msg("dispatching prompt")

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: d.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    d.baseURL,
			APIVersion: c.APIVersion,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: create client: %w", ProviderGemini, err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.Model, genai.Text(text), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		err = classifyGeminiError(ctx, err)
		log.Debug().Err(err).Msg("candidate failed")
		return "", fmt.Errorf("%s: %w", c, err)
	}

	out := geminiText(resp)
	if out == "" {
		log.Debug().Msg("candidate returned no text")
		return "", fmt.Errorf("%s: %s: %w", c, ProviderGemini, ErrEmptyResponse)
	}
	return out, nil
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// classifyGeminiError maps genai errors to apierr errors.
func classifyGeminiError(ctx context.Context, err error) error {
	if c := classifyCommon(ctx, ProviderGemini, err); c != nil {
		return c
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apierr.NewProviderHTTPError(ProviderGemini, apiErr.Code, apiErr.Message)
	}

	return fmt.Errorf("%s: %w", ProviderGemini, err)
}
