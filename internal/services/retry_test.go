package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
)

func newTestRetrier(cfg RetryConfig, slept *[]time.Duration) *CallRetrier {
	return NewCallRetrier(cfg, logger.NewNop()).WithSleep(func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	})
}

func TestCallRetrier_SucceedsAfterTransientFailures(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(DefaultRetryConfig(), &slept)

	calls := 0
	err := r.Do(context.Background(), "generate", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &providerHTTPError{StatusCode: http.StatusServiceUnavailable, Body: "overloaded"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
}

func TestCallRetrier_BackoffDoublesAndCaps(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(RetryConfig{
		MaxRetries:        4,
		InitialDelay:      1 * time.Second,
		MaxDelay:          4 * time.Second,
		BackoffMultiplier: 2,
	}, &slept)

	_ = r.Do(context.Background(), "generate", func(ctx context.Context) error {
		return fmt.Errorf("transient")
	})

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("sleep %d: got %v want %v", i, slept[i], want[i])
		}
	}
}

func TestCallRetrier_RetryAfterHintExtendsTheWait(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(DefaultRetryConfig(), &slept)

	calls := 0
	err := r.Do(context.Background(), "generate", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &providerHTTPError{
				StatusCode: http.StatusTooManyRequests,
				Body:       "slow down",
				RetryAfter: 5 * time.Second,
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Duration{5 * time.Second, 5 * time.Second}
	if len(slept) != len(want) || slept[0] != want[0] || slept[1] != want[1] {
		t.Fatalf("expected hint-driven waits %v, got %v", want, slept)
	}
}

func TestCallRetrier_RetryAfterHintNeverShortensBackoff(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(RetryConfig{
		MaxRetries:        2,
		InitialDelay:      2 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}, &slept)

	_ = r.Do(context.Background(), "generate", func(ctx context.Context) error {
		return &providerHTTPError{
			StatusCode: http.StatusTooManyRequests,
			RetryAfter: 1 * time.Second,
		}
	})

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(slept) != len(want) || slept[0] != want[0] || slept[1] != want[1] {
		t.Fatalf("expected backoff waits %v, got %v", want, slept)
	}
}

func TestCallRetrier_ExhaustionWrapsInProviderError(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(DefaultRetryConfig(), &slept)

	calls := 0
	err := r.Do(context.Background(), "generate", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("still down")
	})
	if calls != 4 {
		t.Fatalf("expected MaxRetries+1 = 4 calls, got %d", calls)
	}
	var pe *aierr.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if pe.Attempts != 4 {
		t.Fatalf("expected 4 attempts recorded, got %d", pe.Attempts)
	}
}

func TestCallRetrier_AuthFailureNeverRetried(t *testing.T) {
	var slept []time.Duration
	r := newTestRetrier(DefaultRetryConfig(), &slept)

	calls := 0
	err := r.Do(context.Background(), "generate", func(ctx context.Context) error {
		calls++
		return &providerHTTPError{StatusCode: http.StatusUnauthorized, Body: "bad key"}
	})
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for auth failure, got %d", calls)
	}
	if len(slept) != 0 {
		t.Fatalf("expected no sleeps, got %v", slept)
	}
	var pe *aierr.ProviderError
	if !errors.As(err, &pe) || pe.Attempts != 1 {
		t.Fatalf("expected ProviderError with 1 attempt, got %v", err)
	}
}

func TestCallRetrier_CancelledContextStopsLoop(t *testing.T) {
	r := NewCallRetrier(DefaultRetryConfig(), logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "generate", func(ctx context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls, got %d", calls)
	}
}

func TestIsRetryableFailure_Classification(t *testing.T) {
	if IsRetryableFailure(&providerHTTPError{StatusCode: http.StatusUnauthorized}) {
		t.Fatalf("401 must not be retryable")
	}
	if !IsRetryableFailure(&providerHTTPError{StatusCode: http.StatusTooManyRequests}) {
		t.Fatalf("429 must be retryable")
	}
	if !IsRetryableFailure(&providerHTTPError{StatusCode: http.StatusBadGateway}) {
		t.Fatalf("502 must be retryable")
	}
	if !IsRetryableFailure(fmt.Errorf("connection reset")) {
		t.Fatalf("unknown errors default to retryable")
	}
}
