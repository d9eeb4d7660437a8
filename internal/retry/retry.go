package retry

import (
	"context"
	"errors"
	"time"

	"github.com/spetersoncode/maildraft"
)

// effectiveDelay returns the configured delay, or the server's Retry-After
// when that is longer.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	var ce maildraft.CategorizedError
	if errors.As(err, &ce) && ce.RetryAfter() > configured {
		return ce.RetryAfter()
	}
	return configured
}

// Do executes fn until it succeeds, fails permanently or runs out of
// attempts. It respects context cancellation during backoff waits and
// returns the last error when all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but emits events for observability.
// Events are sent non-blocking; if the channel is full, events are dropped.
// Pass nil for events to disable event emission (equivalent to Do).
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxAttempts := cfg.attempts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		emit(events, Event{Type: EventAttemptStart, Attempt: attempt + 1, MaxAttempts: maxAttempts})

		result, err := fn()
		if err == nil {
			emit(events, Event{Type: EventSuccess, Attempt: attempt + 1, MaxAttempts: maxAttempts})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)

		emit(events, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// No sleep after the last attempt.
		if attempt == maxAttempts-1 {
			break
		}

		delay := effectiveDelay(cfg.Delay(attempt), err)
		emit(events, Event{
			Type:        EventRetrying,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Delay:       delay,
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	emit(events, Event{
		Type:        EventExhausted,
		Attempt:     maxAttempts,
		MaxAttempts: maxAttempts,
		Error:       lastErr,
	})

	return zero, lastErr
}
