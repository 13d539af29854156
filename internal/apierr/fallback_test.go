package apierr_test

// Notes:
// - FirstSuccess is sequential; call order is recorded to check that
//   nothing after the winning candidate runs.

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-promptforge/internal/apierr"
)

// ---------------------------------------------------------------------------
// TestFirstSuccess - ordered fallback search
// ---------------------------------------------------------------------------

func TestFirstSuccess_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	var calls []string
	got, err := apierr.FirstSuccess(context.Background(), []string{"a", "b", "c"},
		func(_ context.Context, c string) (string, error) {
			calls = append(calls, c)
			if c == "b" {
				return "ok:" + c, nil
			}
			return "", errors.New("fail " + c)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok:b" {
		t.Errorf("result = %q, want %q", got, "ok:b")
	}
	if strings.Join(calls, ",") != "a,b" {
		t.Errorf("calls = %v, want [a b]", calls)
	}
}

func TestFirstSuccess_FirstCandidateWins(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := apierr.FirstSuccess(context.Background(), []int{1, 2, 3},
		func(_ context.Context, c int) (int, error) {
			calls++
			return c * 10, nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10 || calls != 1 {
		t.Errorf("got %d after %d calls, want 10 after 1 call", got, calls)
	}
}

func TestFirstSuccess_AllFail(t *testing.T) {
	t.Parallel()

	errA := errors.New("model a missing")
	errB := apierr.NewProviderHTTPError("gemini", 404, "model b missing")

	calls := 0
	_, err := apierr.FirstSuccess(context.Background(), []error{errA, errB},
		func(_ context.Context, c error) (string, error) {
			calls++
			return "", c
		})

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !errors.Is(err, apierr.ErrAllFallbacksExhausted) {
		t.Errorf("errors.Is(err, ErrAllFallbacksExhausted) = false; err = %v", err)
	}
	if !errors.Is(err, errA) {
		t.Errorf("joined error should contain first attempt error")
	}
	if !errors.Is(err, apierr.ErrBadRequest) {
		t.Errorf("joined error should keep classified attempt errors")
	}
	if !strings.Contains(err.Error(), "2 attempts") {
		t.Errorf("Error() = %q, want attempt count", err.Error())
	}
}

func TestFirstSuccess_NoCandidates(t *testing.T) {
	t.Parallel()

	_, err := apierr.FirstSuccess(context.Background(), nil,
		func(_ context.Context, _ string) (string, error) {
			t.Fatal("fn must not be called")
			return "", nil
		})
	if !errors.Is(err, apierr.ErrAllFallbacksExhausted) {
		t.Errorf("errors.Is(err, ErrAllFallbacksExhausted) = false; err = %v", err)
	}
}

func TestFirstSuccess_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := apierr.FirstSuccess(ctx, []string{"a", "b"},
		func(_ context.Context, _ string) (string, error) {
			calls++
			return "", nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestFirstSuccess_CancelledDuringAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	_, err := apierr.FirstSuccess(ctx, []string{"a", "b", "c"},
		func(ctx context.Context, _ string) (string, error) {
			calls++
			cancel()
			return "", ctx.Err()
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, apierr.ErrAllFallbacksExhausted) {
		t.Errorf("cancellation must not be reported as exhausted fallbacks")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
