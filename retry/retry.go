package retry

import (
	"context"
	"time"
)

// Config controls the retry behaviour of [Do].
type Config struct {
	// MaxAttempts is the total number of calls, the first one included.
	// Values ≤ 1 disable retries.
	MaxAttempts int

	// BaseDelay is the wait before the first retry; each further retry doubles
	// it.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay. Zero means no cap.
	MaxDelay time.Duration

	// Jitter randomizes the delay by ±Jitter of its value. 0.2 means ±20 %.
	Jitter float64

	// Retryable reports whether err is worth another attempt. A nil
	// Retryable retries nothing.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, returns an error Retryable rejects, or
// cfg.MaxAttempts is reached. The last error is returned as is. A done ctx
// ends the wait between attempts and its error is returned.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	var err error
	for i := range attempts {
		var result T
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 || cfg.Retryable == nil || !cfg.Retryable(err) {
			return zero, err
		}

		timer := time.NewTimer(backoff(cfg, i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, err
}

// Run is [Do] for operations without a result.
func Run(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
