// Package retry runs an operation repeatedly with exponential backoff,
// letting the caller classify each failure instead of guessing from error
// strings. Used for dependencies that may not be up yet at process start.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Action tells the loop what a failure means.
type Action int

const (
	// Stop marks the error permanent; the loop aborts immediately.
	Stop Action = iota
	// Retry marks the error transient; the loop backs off and tries again.
	Retry
	// After marks the error as rate limiting; the loop waits the longer
	// RateLimitBackoff before the next attempt.
	After
)

// Policy bounds the loop. OnRetry, when set, observes every failed attempt
// that will be retried.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	OnRetry          func(attempt int, err error, backoff time.Duration)
}

// Classify maps an error to the Action the loop should take.
type Classify func(err error) Action

// Operation is one attempt producing a value.
type Operation[T any] func() (T, error)

// VoidOperation is one attempt with no result.
type VoidOperation func() error

// Do runs op until it succeeds, classify says Stop, the attempts run out,
// or ctx is canceled during a backoff wait. Backoff doubles per attempt.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	backoff := p.InitialBackoff

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		switch classify(err) {
		case Stop:
			return zero, &PermanentError{Err: err}
		case After:
			backoff = p.RateLimitBackoff
		}

		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	panic("unreachable: MaxAttempts must be >= 1")
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, p Policy, classify Classify, op VoidOperation) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}

// PermanentError wraps an error the classifier declared unretryable.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
