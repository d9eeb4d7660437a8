package client

import (
	"log/slog"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/retry"
)

// EventType names a step in the life of one stage's model call.
type EventType string

const (
	EventRequestStart    EventType = "request_start"
	EventRequestComplete EventType = "request_complete"
	EventRequestError    EventType = "request_error"
	EventRetry           EventType = "retry"
)

// Event is sent on Config.Events for every model call the client makes.
// Task is the pipeline stage that issued the call. Usage is set on
// completion, Error on failure and RetryEvent on EventRetry.
type Event struct {
	Type       EventType
	Task       string
	Provider   ai.Provider
	Model      string
	Duration   time.Duration
	Usage      *ai.Usage
	Error      error
	RetryEvent *retry.Event
	At         time.Time
}

// LogValue groups the populated fields for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(e.Type)),
		slog.String("task", e.Task),
		slog.String("provider", string(e.Provider)),
		slog.String("model", e.Model),
	}
	if e.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", e.Duration))
	}
	if e.Usage != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", e.Usage.InputTokens),
			slog.Int("output_tokens", e.Usage.OutputTokens))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	if e.RetryEvent != nil {
		attrs = append(attrs, slog.Any("retry", e.RetryEvent.LogValue()))
	}
	return slog.GroupValue(attrs...)
}

func emit(ch chan<- Event, ev Event) {
	ev.At = time.Now()
	retry.Send(ch, ev)
}
