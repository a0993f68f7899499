package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), DefaultRetryPolicy(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesRetryableError(t *testing.T) {
	calls := 0
	policy := RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
		Jitter:       false,
		Retryable:    &AlwaysRetryChecker{},
	}
	err := WithRetry(context.Background(), policy, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

type AlwaysRetryChecker struct{}

func (c *AlwaysRetryChecker) IsRetryable(err error) bool { return true }

func TestWithRetryAbortsOnNonRetryable(t *testing.T) {
	calls := 0
	policy := DefaultRetryPolicy()
	policy.Retryable = &NeverRetryChecker{}
	err := WithRetry(context.Background(), policy, func() error {
		calls++
		return errors.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	policy := RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
		Retryable:    &AlwaysRetryChecker{},
	}
	err := WithRetry(context.Background(), policy, func() error {
		calls++
		return errors.New("always fails")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Retryable:    &AlwaysRetryChecker{},
	}
	calls := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := WithRetry(ctx, policy, func() error {
		calls++
		return errors.New("fails")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryFuncReturnsResult(t *testing.T) {
	calls := 0
	result, err := WithRetryFunc(context.Background(), DefaultRetryPolicy(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestComputeDelayRespectsMaxDelay(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay: time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   10,
		Jitter:       false,
	}
	d := computeDelay(5, policy)
	assert.LessOrEqual(t, d, 2*time.Second)
}

func TestComputeDelayJitterWithinBounds(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
	for i := 0; i < 50; i++ {
		d := computeDelay(1, policy)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, policy.MaxDelay)
	}
}
