package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// Anthropic API configuration.
const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-3-5-sonnet-20241022"
)

// Compile-time interface compliance check.
var _ Dispatcher = (*AnthropicDispatcher)(nil)

// AnthropicDispatcher sends prompts to the Anthropic messages API.
type AnthropicDispatcher struct {
	settings
}

// NewAnthropicDispatcher creates an Anthropic adapter.
func NewAnthropicDispatcher(opts ...Option) *AnthropicDispatcher {
	return &AnthropicDispatcher{settings: newSettings(defaultAnthropicBaseURL, DefaultAnthropicModel, opts)}
}

// Dispatch sends one message request. The SDK's built-in retries are disabled.
func (d *AnthropicDispatcher) Dispatch(ctx context.Context, cred Credential, model, prompt string) (string, error) {
	if cred.Secret == "" {
		return "", fmt.Errorf("%s: %w", ProviderAnthropic, apierr.ErrCredentialMissing)
	}
	if model == "" {
		model = d.model
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cred.Secret),
		option.WithBaseURL(d.baseURL+"/"),
		option.WithHTTPClient(d.httpClient),
		option.WithMaxRetries(0),
	)

	d.logger.Debug().Str("provider", ProviderAnthropic).Str("model", model).Msg("dispatching prompt")

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxOutputTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: systemInstruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(ctx, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%s: %w", ProviderAnthropic, ErrEmptyResponse)
	}
	return b.String(), nil
}

// classifyAnthropicError maps Anthropic SDK errors to apierr errors.
func classifyAnthropicError(ctx context.Context, err error) error {
	if c := classifyCommon(ctx, ProviderAnthropic, err); c != nil {
		return c
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		raw := apiErr.RawJSON()
		msg := gjson.Get(raw, "error.message").String()
		if msg == "" {
			msg = raw
		}
		return apierr.NewProviderHTTPError(ProviderAnthropic, apiErr.StatusCode, msg)
	}

	return fmt.Errorf("%s: %w", ProviderAnthropic, err)
}
