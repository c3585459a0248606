package httpclient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
)

func fastRetryConfig(maxRetries int) httpclient.RetryConfig {
	return httpclient.RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := httpclient.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastRetryConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := httpclient.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return httpclient.NewServiceUnavailableError("github", "try later")
		}
		return nil
	}, fastRetryConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	authErr := httpclient.NewAuthenticationError("github", "bad token")
	err := httpclient.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return authErr
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, authErr)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := httpclient.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return httpclient.NewRateLimitError("github", "slow down")
	}, fastRetryConfig(2))

	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestRetryWithBackoff_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := httpclient.RetryWithBackoff(ctx, func(ctx context.Context) error {
		t.Fatal("operation should not run with cancelled context")
		return nil
	}, fastRetryConfig(3))

	require.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithBackoff_GenericErrorsAreNotRetried(t *testing.T) {
	calls := 0
	err := httpclient.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("plain failure")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponentialBackoff_StaysWithinBounds(t *testing.T) {
	config := httpclient.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     2.0,
	}

	for attempt := 0; attempt < 10; attempt++ {
		backoff := httpclient.ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, backoff, time.Duration(0))
		assert.LessOrEqual(t, backoff, config.MaxBackoff)
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, httpclient.ShouldRetry(nil))
	assert.False(t, httpclient.ShouldRetry(errors.New("generic")))
	assert.True(t, httpclient.ShouldRetry(httpclient.NewRateLimitError("github", "m")))
	assert.True(t, httpclient.ShouldRetry(httpclient.NewTimeoutError("github", "m")))
	assert.False(t, httpclient.ShouldRetry(httpclient.NewInvalidRequestError("github", "m")))
}
