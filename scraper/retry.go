package scraper

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy controls bounded retry with uncapped exponential backoff.
// Every error is treated as transient.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 mean a single attempt. Default: 3.
	MaxAttempts int

	// BaseDelay is the pause before the second attempt. Each later pause
	// doubles it. Default: 5s.
	BaseDelay time.Duration

	// Sleep waits for d or until ctx is done. Nil means a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnAttemptFailed is called after every failed attempt, the last one
	// included. It is diagnostic only. Nil means a slog warning.
	OnAttemptFailed func(attempt int, err error)
}

// DefaultRetryPolicy returns three attempts with a 5s base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
	}
}

// Backoff returns the pause after failed attempt i, counting from 0.
func (p RetryPolicy) Backoff(i int) time.Duration {
	return p.BaseDelay << uint(i)
}

// RunWithRetry runs op until it succeeds or MaxAttempts is reached. The last
// error is returned unchanged. No pause follows the final attempt. A context
// ending during a pause stops retrying and returns the last op error.
func RunWithRetry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	onFail := p.OnAttemptFailed
	if onFail == nil {
		onFail = logAttemptFailed
	}

	var zero T
	var lastErr error
	for i := 0; i < attempts; i++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err
		onFail(i+1, err)

		if i == attempts-1 {
			break
		}
		if sleepErr := sleep(ctx, p.Backoff(i)); sleepErr != nil {
			break
		}
	}
	return zero, lastErr
}

func logAttemptFailed(attempt int, err error) {
	slog.Warn("attempt failed", "attempt", attempt, "error", err)
}

// sleepCtx waits for d, returning early with ctx.Err() if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
