package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(n int) RetryConfig {
	return RetryConfig{
		MaxRetries:   n,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryWithResult_SucceedsAfterTransientError(t *testing.T) {
	// Given: a function that fails twice with a retryable error then succeeds
	attempts := 0
	fn := func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", NetworkError("connection reset", nil)
		}
		return "ok", nil
	}

	// When: retrying
	result, err := RetryWithResult(context.Background(), fastRetry(3), fn)

	// Then: succeeds on the third attempt
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithResult_NonRetryableReturnsImmediately(t *testing.T) {
	attempts := 0
	want := HTTPError(404, "not found")

	_, err := RetryWithResult(context.Background(), fastRetry(3), func() (int, error) {
		attempts++
		return 0, want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithResult_ZeroRetriesReturnsErrorUnchanged(t *testing.T) {
	want := NetworkError("refused", nil)

	_, err := RetryWithResult(context.Background(), DefaultRetryConfig(), func() (int, error) {
		return 0, want
	})

	assert.Same(t, want, err)
}

func TestRetryWithResult_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	_, err := RetryWithResult(context.Background(), fastRetry(2), func() (int, error) {
		attempts++
		return 0, HTTPError(503, "unavailable")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, attempts) // Initial + 2 retries
	assert.True(t, IsKind(err, KindHTTP))
}

func TestRetryWithResult_CustomPredicate(t *testing.T) {
	attempts := 0
	cfg := fastRetry(2)
	cfg.ShouldRetry = func(error) bool { return true }

	_, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		attempts++
		return 0, errors.New("plain")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithResult_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := RetryWithResult(ctx, fastRetry(3), func() (int, error) {
		attempts++
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}
