package services

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 2
	DefaultBackoff     = 500 * time.Millisecond
)

// AttemptPolicy bounds how an upstream call is retried
type AttemptPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// DefaultAttemptPolicy retries once, after 500ms, on transient failures.
func DefaultAttemptPolicy() AttemptPolicy {
	return AttemptPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		Retryable:   IsTransient,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget runs out. It returns the number of attempts made along
// with the last error.
func (p AttemptPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if attempt == maxAttempts || !retryable(err) {
			return attempt, err
		}

		if p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, err
			case <-timer.C:
			}
		}
	}
	return maxAttempts, err
}
