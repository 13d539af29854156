// Package apierr provides shared error sentinels and the fallback search
// used by the provider adapters. All provider-specific error types are
// classified into these sentinels at the adapter boundary.
//
// Adapters turn non-2xx responses into *ProviderHTTPError and transport
// failures into ErrProviderUnreachable. Callers check with
// errors.Is(err, apierr.ErrRateLimit) or errors.As(err, &httpErr).
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Sentinel errors for provider interaction failures.
var (
	// ErrCredentialMissing indicates no active API key exists for the selected provider.
	// Returned before any network call is attempted.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrProviderUnreachable indicates a transport-level failure (DNS, TLS, connection reset).
	ErrProviderUnreachable = errors.New("provider unreachable")

	// ErrAllFallbacksExhausted indicates every candidate of a fallback search failed.
	ErrAllFallbacksExhausted = errors.New("all fallbacks exhausted")

	// ErrRateLimit indicates the provider rate limit was exceeded (HTTP 429).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the account quota or balance is exhausted (billing issue).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrAuthFailed indicates the provider rejected the API key (HTTP 401/403).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrTimeout indicates the provider timed out (HTTP 408/504).
	ErrTimeout = errors.New("request timeout")

	// ErrServer indicates a provider-side failure (HTTP 5xx).
	ErrServer = errors.New("provider server error")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)

// maxErrorBody caps the vendor message kept on a ProviderHTTPError.
const maxErrorBody = 2048

// ProviderHTTPError reports a non-2xx response from a provider.
// Body holds the vendor message (or raw body when it could not be decoded).
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

// NewProviderHTTPError builds a ProviderHTTPError, truncating oversized bodies.
func NewProviderHTTPError(provider string, statusCode int, body string) *ProviderHTTPError {
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return &ProviderHTTPError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
	}
}

func (e *ProviderHTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s API error %d", e.Provider, e.StatusCode)
}

// Unwrap classifies the status code into a sentinel so callers can use errors.Is.
func (e *ProviderHTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		// Distinguish temporary rate limits from billing problems.
		lower := strings.ToLower(e.Body)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") ||
			strings.Contains(lower, "credit") {
			return ErrQuotaExceeded
		}
		return ErrRateLimit
	case e.StatusCode == http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrAuthFailed
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusGatewayTimeout:
		return ErrTimeout
	case e.StatusCode >= 500:
		return ErrServer
	case e.StatusCode >= 400:
		return ErrBadRequest
	}
	return nil
}

// Unreachable wraps a transport failure so that it matches ErrProviderUnreachable
// while keeping the underlying cause in the chain.
func Unreachable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrProviderUnreachable, err)
}
