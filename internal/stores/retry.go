package stores

import (
	"context"
	"time"
)

// RetryPolicy describes how a single store call is retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Retryable   func(error) bool

	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries only rate-limited calls: 4 attempts, 500ms doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2,
		Retryable:   IsRateLimited,
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

// WithRetry runs call until it succeeds, fails with a non-retryable error, or the
// policy's attempts are used up. It returns the last result, the number of
// attempts made and the last error.
func WithRetry[T any](ctx context.Context, p RetryPolicy, call func(context.Context) (T, error)) (T, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRateLimited
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = call(ctx)
		if err == nil || !retryable(err) || attempt == maxAttempts {
			return result, attempt, err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return result, attempt, err
		}
	}
	return result, maxAttempts, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
