package apierr

import (
	"context"
	"errors"
	"fmt"
)

// FirstSuccess calls fn for each candidate in order and returns the first
// successful result. Attempts run sequentially with no delay between them,
// and nothing after the winning candidate is attempted.
//
// The search stops early when ctx is done. When every candidate fails the
// returned error matches ErrAllFallbacksExhausted and joins every attempt error.
func FirstSuccess[C, T any](
	ctx context.Context,
	candidates []C,
	fn func(ctx context.Context, candidate C) (T, error),
) (T, error) {
	var zero T
	errs := make([]error, 0, len(candidates))

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx, c)
		if err == nil {
			return result, nil
		}

		// A cancelled caller is not a candidate failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return zero, fmt.Errorf("%w: no candidates", ErrAllFallbacksExhausted)
	}
	return zero, fmt.Errorf("%w after %d attempts: %w",
		ErrAllFallbacksExhausted, len(errs), errors.Join(errs...))
}
