package provider

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// OpenAI API configuration.
const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	DefaultOpenAIModel   = openai.GPT4oMini
)

// Compile-time interface compliance check.
var _ Dispatcher = (*OpenAIDispatcher)(nil)

// OpenAIDispatcher sends prompts to the OpenAI chat completions API.
type OpenAIDispatcher struct {
	settings
}

// NewOpenAIDispatcher creates an OpenAI adapter.
func NewOpenAIDispatcher(opts ...Option) *OpenAIDispatcher {
	return &OpenAIDispatcher{settings: newSettings(defaultOpenAIBaseURL, DefaultOpenAIModel, opts)}
}

// Dispatch sends one chat completion request with a system and a user message.
func (d *OpenAIDispatcher) Dispatch(ctx context.Context, cred Credential, model, prompt string) (string, error) {
	if cred.Secret == "" {
		return "", fmt.Errorf("%s: %w", ProviderOpenAI, apierr.ErrCredentialMissing)
	}
	if model == "" {
		model = d.model
	}

	cfg := openai.DefaultConfig(cred.Secret)
	cfg.BaseURL = d.baseURL + "/v1"
	cfg.HTTPClient = d.httpClient
	client := openai.NewClientWithConfig(cfg)

	d.logger.Debug().Str("provider", ProviderOpenAI).Str("model", model).Msg("dispatching prompt")

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s: %w", ProviderOpenAI, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps go-openai errors to apierr errors.
func classifyOpenAIError(ctx context.Context, err error) error {
	if c := classifyCommon(ctx, ProviderOpenAI, err); c != nil {
		return c
	}

	// Check for typed API errors first (most reliable).
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.NewProviderHTTPError(ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message)
	}

	// Non-JSON error bodies surface as RequestError.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return apierr.NewProviderHTTPError(ProviderOpenAI, reqErr.HTTPStatusCode, msg)
	}

	return fmt.Errorf("%s: %w", ProviderOpenAI, err)
}
