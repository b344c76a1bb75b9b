package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/retry"
)

var fastPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   1 * time.Millisecond,
	RateLimitBackoff: 5 * time.Millisecond,
}

func transientOnly(error) retry.Action { return retry.Retry }
func permanentOnly(error) retry.Action { return retry.Stop }

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	val, err := retry.Do(context.Background(), fastPolicy, transientOnly, func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversFromTransientErrors(t *testing.T) {
	// A database that is still starting refuses the first pings
	calls := 0
	val, err := retry.Do(context.Background(), fastPolicy, transientOnly, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "connected", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "connected", val)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	badCreds := errors.New("password authentication failed")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, permanentOnly, func() (struct{}, error) {
		calls++
		return struct{}{}, badCreds
	})

	var permErr *retry.PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.ErrorIs(t, err, badCreds)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	down := errors.New("connection refused")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy, transientOnly, func() (struct{}, error) {
		calls++
		return struct{}{}, down
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Equal(t, fastPolicy.MaxAttempts, calls)
}

func TestDoUsesRateLimitBackoff(t *testing.T) {
	var observed time.Duration
	p := retry.Policy{
		MaxAttempts:      2,
		InitialBackoff:   1 * time.Millisecond,
		RateLimitBackoff: 5 * time.Millisecond,
		OnRetry: func(_ int, _ error, backoff time.Duration) {
			observed = backoff
		},
	}
	rateLimited := func(error) retry.Action { return retry.After }

	_, _ = retry.Do(context.Background(), p, rateLimited, func() (struct{}, error) {
		return struct{}{}, errors.New("too many requests")
	})

	assert.Equal(t, 5*time.Millisecond, observed)
}

func TestDoHonorsContextDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{
		MaxAttempts:      3,
		InitialBackoff:   10 * time.Second,
		RateLimitBackoff: 10 * time.Second,
	}

	calls := 0
	_, err := retry.Do(ctx, p, transientOnly, func() (struct{}, error) {
		calls++
		cancel()
		return struct{}{}, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoReportsEachRetriedAttempt(t *testing.T) {
	var attempts []int
	p := fastPolicy
	p.OnRetry = func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = retry.Do(context.Background(), p, transientOnly, func() (struct{}, error) {
		return struct{}{}, errors.New("connection refused")
	})

	// The final attempt is exhaustion, not a retry, so it is not reported
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVoid(t *testing.T) {
	calls := 0
	err := retry.DoVoid(context.Background(), fastPolicy, transientOnly, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	underlying := errors.New("schema mismatch")
	err = retry.DoVoid(context.Background(), fastPolicy, permanentOnly, func() error {
		return underlying
	})
	var permErr *retry.PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.ErrorIs(t, err, underlying)
}
