package retry

import (
	"context"
	"time"
)

// Do executes fn with exponential backoff, retrying transient errors up
// to cfg.MaxAttempts. Returns the first success, the first non-transient
// error, or the last error once attempts run out.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		lastErr = err

		if attempt < cfg.MaxAttempts-1 {
			if werr := backoffWait(ctx, cfg, attempt); werr != nil {
				return zero, werr
			}
		}
	}
	return zero, lastErr
}

// DoStream is Do for functions returning a channel. Only establishing
// the stream is retried; once chunks are flowing a mid-stream failure is
// surfaced to the consumer, since partial output may already have been
// forwarded.
func DoStream[T any](ctx context.Context, cfg Config, fn func() (<-chan T, error)) (<-chan T, error) {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		ch, err := fn()
		if err == nil {
			return ch, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt < cfg.MaxAttempts-1 {
			if werr := backoffWait(ctx, cfg, attempt); werr != nil {
				return nil, werr
			}
		}
	}
	return nil, lastErr
}

// backoffWait sleeps the attempt's delay. A cancelled task stops
// retrying immediately.
func backoffWait(ctx context.Context, cfg Config, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Delay(attempt)):
		return nil
	}
}
