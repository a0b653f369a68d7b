package services

import (
	"context"
	"errors"
	"time"

	"github.com/skyvolt/aeroscope-backend/internal/aierr"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
)

// RetryConfig bounds the backoff envelope around one external call.
type RetryConfig struct {
	MaxRetries        int           `yaml:"max_retries"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// CallRetrier runs one operation through a bounded exponential backoff loop.
// The attempt counter and current delay are explicit state, and sleeping
// goes through an injectable function so tests drive the loop with a fake
// clock instead of waiting out real delays.
type CallRetrier struct {
	cfg   RetryConfig
	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewCallRetrier(cfg RetryConfig, log *logger.Logger) *CallRetrier {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 2
	}
	return &CallRetrier{
		cfg:   cfg,
		log:   log.With("service", "CallRetrier"),
		sleep: sleepWithContext,
	}
}

// WithSleep replaces the sleep function. Test hook.
func (r *CallRetrier) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *CallRetrier {
	r.sleep = sleep
	return r
}

// Do runs fn up to MaxRetries+1 times. Authentication failures are returned
// immediately; retrying them only burns quota. Exhaustion surfaces the last
// error wrapped in a ProviderError.
func (r *CallRetrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := r.cfg.InitialDelay

	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if IsAuthFailure(lastErr) {
			return &aierr.ProviderError{Attempts: attempt + 1, Err: lastErr}
		}

		if attempt == r.cfg.MaxRetries {
			break
		}

		// A provider-supplied Retry-After hint extends the wait but never
		// shortens the backoff already earned.
		wait := delay
		if hint := retryAfterOf(lastErr); hint > wait {
			wait = hint
		}

		r.log.Warn("External call retrying",
			"op", op,
			"attempt", attempt+1,
			"max_retries", r.cfg.MaxRetries,
			"delay", wait.String(),
			"error", lastErr.Error(),
		)
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}

		delay = time.Duration(float64(delay) * r.cfg.BackoffMultiplier)
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return &aierr.ProviderError{Attempts: r.cfg.MaxRetries + 1, Err: lastErr}
}

// retryAfterOf extracts the provider's Retry-After hint from err, or zero
// when none was supplied.
func retryAfterOf(err error) time.Duration {
	var httpErr *providerHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
