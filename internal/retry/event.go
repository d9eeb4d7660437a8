package retry

import (
	"log/slog"
	"time"
)

// EventType names a step of a retried model call.
type EventType string

const (
	EventAttemptStart  EventType = "attempt_start"
	EventAttemptFailed EventType = "attempt_failed"
	EventRetrying      EventType = "retrying" // sent before the backoff sleep
	EventSuccess       EventType = "success"
	EventExhausted     EventType = "exhausted"
)

// Event reports progress of DoWithEvents. Attempt is 1-indexed. Delay is
// only set on EventRetrying and Retryable only on EventAttemptFailed.
type Event struct {
	Type        EventType
	Attempt     int
	MaxAttempts int
	Error       error
	Delay       time.Duration
	Retryable   bool
	At          time.Time
}

// LogValue groups the populated fields for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.Int("attempt", e.Attempt),
		slog.Int("max_attempts", e.MaxAttempts),
	}
	if e.Delay > 0 {
		attrs = append(attrs, slog.Duration("delay", e.Delay))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Send delivers ev on ch unless ch is nil or full. Observers must never
// slow down a model call.
func Send[E any](ch chan<- E, ev E) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

func emit(ch chan<- Event, ev Event) {
	ev.At = time.Now()
	Send(ch, ev)
}
