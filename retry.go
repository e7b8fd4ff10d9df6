package smbclient

import (
	"context"
	"time"
)

// RetryPolicy defines retry behavior for Retry.
type RetryPolicy struct {
	MaxAttempts  int           // Maximum number of attempts (default: 3)
	InitialDelay time.Duration // Initial delay between retries (default: 100ms)
	MaxDelay     time.Duration // Maximum delay between retries (default: 5s)
	Multiplier   float64       // Backoff multiplier (default: 2.0)
}

// DefaultRetryPolicy is used when Retry is given a nil policy.
var DefaultRetryPolicy = &RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// Retry runs operation until it succeeds, fails with an error IsRetryable
// rejects, or the policy is exhausted, backing off exponentially between
// attempts. Sessions and Shares never retry on their own; a Session that
// failed to connect is terminal, so operation should build a fresh one.
func Retry(ctx context.Context, policy *RetryPolicy, logger Logger, operation func(ctx context.Context) error) error {
	if policy == nil {
		policy = DefaultRetryPolicy
	}

	// If MaxAttempts is 0 or 1, don't retry
	if policy.MaxAttempts <= 1 {
		return operation(ctx)
	}

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		if logger != nil {
			logger.Printf("Operation failed (attempt %d/%d), retrying in %v: %v",
				attempt, policy.MaxAttempts, delay, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * policy.Multiplier)
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return lastErr
}
