// Package resilience provides the reliability patterns the Resilient Client
// composes around outbound Inventory calls: retry with backoff, a circuit
// breaker, and error classification shared by both.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// RetryPolicy configures WithRetry's exponential-backoff behavior (spec §4.C2).
//
// Example:
//
//	policy := DefaultRetryPolicy()
//	err := WithRetry(ctx, policy, func() error {
//	    _, err := client.CreateSite(ctx, req)
//	    return err
//	})
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	// (MaxAttempts=1 means no retries).
	MaxAttempts int

	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the computed delay for any attempt.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff factor (e.g. 2.0).
	Multiplier float64

	// Jitter, if true, draws the actual delay uniformly from
	// [d/2, 3d/2] (clamped to [0, MaxDelay]) instead of using d directly.
	Jitter bool

	// Retryable determines whether a failed attempt should be retried.
	// If nil, DefaultErrorChecker is used.
	Retryable RetryableErrorChecker

	// Logger for retry events. If nil, slog.Default() is used.
	Logger *slog.Logger

	// OnRetry, if set, is called once per retry attempt issued (i.e. once
	// per sleep-then-reattempt, not on the first attempt). Used by C4 to
	// feed the retry-count metric without this package depending on it.
	OnRetry func()
}

// RetryableErrorChecker decides whether an error should trigger another
// attempt.
type RetryableErrorChecker interface {
	IsRetryable(err error) bool
}

// DefaultRetryPolicy returns the spec's default policy: 3 attempts, 100ms
// initial delay, 5s cap, x2 multiplier, jitter on.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry drives operation to completion, retrying failures that
// policy.Retryable accepts, up to policy.MaxAttempts. The last attempt never
// sleeps afterward. Context cancellation aborts an in-flight sleep
// immediately and returns ctx.Err().
func WithRetry(ctx context.Context, policy RetryPolicy, operation func() error) error {
	normalize(&policy)
	logger := policy.Logger

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		lastErr = err

		if !shouldRetry(err, policy.Retryable) {
			logger.Debug("error is non-retryable, aborting retry loop", "attempt", attempt, "error", err)
			return lastErr
		}

		if attempt == policy.MaxAttempts {
			logger.Error("operation failed after all attempts", "attempts", attempt, "error", lastErr)
			break
		}

		delay := computeDelay(attempt, policy)
		logger.Warn("operation failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		if policy.OnRetry != nil {
			policy.OnRetry()
		}

		if !waitWithContext(ctx, delay) {
			return ctx.Err()
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w: %w", policy.MaxAttempts, ErrMaxRetriesExceeded, lastErr)
}

// WithRetryFunc is WithRetry for operations that also produce a result.
func WithRetryFunc[T any](ctx context.Context, policy RetryPolicy, operation func() (T, error)) (T, error) {
	normalize(&policy)
	logger := policy.Logger

	var lastResult T
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := operation()
		if err == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}
		lastResult, lastErr = result, err

		if !shouldRetry(err, policy.Retryable) {
			return lastResult, lastErr
		}

		if attempt == policy.MaxAttempts {
			logger.Error("operation failed after all attempts", "attempts", attempt, "error", lastErr)
			break
		}

		delay := computeDelay(attempt, policy)
		logger.Warn("operation failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		if policy.OnRetry != nil {
			policy.OnRetry()
		}

		if !waitWithContext(ctx, delay) {
			var zero T
			return zero, ctx.Err()
		}
	}

	return lastResult, fmt.Errorf("operation failed after %d attempts: %w: %w", policy.MaxAttempts, ErrMaxRetriesExceeded, lastErr)
}

// computeDelay returns the delay to wait before the attempt-th retry
// (attempt is 1-indexed: the delay before attempt+1). Per spec §4.C2:
// delay(k) = min(initial * multiplier^(k-1), max), then optionally jittered
// uniformly in [d/2, 3d/2] clamped to [0, max].
func computeDelay(attempt int, policy RetryPolicy) time.Duration {
	d := float64(policy.InitialDelay) * pow(policy.Multiplier, attempt-1)
	max := float64(policy.MaxDelay)
	if d > max {
		d = max
	}

	if policy.Jitter {
		lo := d / 2
		hi := 3 * d / 2
		d = lo + rand.Float64()*(hi-lo)
		if d < 0 {
			d = 0
		}
		if d > max {
			d = max
		}
	}

	return time.Duration(d)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func normalize(policy *RetryPolicy) {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Logger == nil {
		policy.Logger = slog.Default()
	}
}

func shouldRetry(err error, checker RetryableErrorChecker) bool {
	if err == nil {
		return false
	}
	if checker != nil {
		return checker.IsRetryable(err)
	}
	return (&DefaultErrorChecker{}).IsRetryable(err)
}

// waitWithContext waits for delay, returning false if ctx is cancelled first.
func waitWithContext(ctx context.Context, delay time.Duration) bool {
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
