package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// classifyCommon handles the failures every SDK reports the same way.
// It returns nil when err needs vendor-specific classification.
func classifyCommon(ctx context.Context, provider string, err error) error {
	// Caller cancellation passes through unchanged. A context error while
	// ctx is still live comes from the HTTP client timeout instead.
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var urlErr *url.Error
	isURLErr := errors.As(err, &urlErr)
	switch {
	case isURLErr && urlErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", apierr.Unreachable(provider, err), apierr.ErrTimeout)
	case isURLErr:
		return apierr.Unreachable(provider, err)
	}
	return nil
}
