package workflow

import (
	"log/slog"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/event"
	"github.com/spetersoncode/maildraft/metrics"
)

// Defaults applied by New.
const (
	DefaultHistoryLimit   = 10
	DefaultRunTimeout     = 60 * time.Second
	DefaultPersistTimeout = 5 * time.Second
)

// Options contains configuration for an Orchestrator.
type Options struct {
	// Stages run in order. Defaults to DefaultStages.
	Stages []Stage

	History   HistoryStore
	Profiles  ProfileStore
	Publisher Publisher
	Observer  Observer

	// Usage, when set, receives every call of every run.
	Usage *metrics.Accumulator

	// Pricing enables per-run cost estimates.
	Pricing metrics.PriceFunc

	Logger *slog.Logger

	// HistoryLimit caps the history entries supplied to contextual runs.
	HistoryLimit int

	// Stub serves use_stub requests. Defaults to client.NewStub.
	Stub ai.Generator

	// RunTimeout bounds a run that carries no deadline of its own.
	RunTimeout time.Duration

	// PersistTimeout bounds history writes and run publishing.
	PersistTimeout time.Duration
}

// Option is a functional option for orchestrator configuration.
type Option func(*Options)

// WithStages replaces the stage sequence.
func WithStages(stages ...Stage) Option {
	return func(o *Options) {
		o.Stages = stages
	}
}

// WithHistory sets the history store used for context and persistence.
func WithHistory(h HistoryStore) Option {
	return func(o *Options) {
		o.History = h
	}
}

// WithProfiles sets the sender profile store.
func WithProfiles(p ProfileStore) Option {
	return func(o *Options) {
		o.Profiles = p
	}
}

// WithPublisher sets where completed runs are announced.
func WithPublisher(p Publisher) Option {
	return func(o *Options) {
		o.Publisher = p
	}
}

// WithObserver sets the run-level metrics observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

// WithUsage sets the process-wide accumulator.
func WithUsage(acc *metrics.Accumulator) Option {
	return func(o *Options) {
		o.Usage = acc
	}
}

// WithPricing enables cost estimates in run summaries.
func WithPricing(fn metrics.PriceFunc) Option {
	return func(o *Options) {
		o.Pricing = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithHistoryLimit sets how many history entries contextual runs receive.
func WithHistoryLimit(n int) Option {
	return func(o *Options) {
		o.HistoryLimit = n
	}
}

// WithStub sets the generator serving use_stub requests.
func WithStub(g ai.Generator) Option {
	return func(o *Options) {
		o.Stub = g
	}
}

// WithRunTimeout sets the default deadline of a run.
func WithRunTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RunTimeout = d
	}
}

// WithPersistTimeout bounds history writes and publishing.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.PersistTimeout = d
	}
}

// RunOptions configures a single run.
type RunOptions struct {
	// Timeout overrides the orchestrator's run timeout. Negative disables it.
	Timeout time.Duration

	// Events receives pipeline progress. Sends never block.
	Events chan<- event.Event
}

// RunOption is a functional option for a single run.
type RunOption func(*RunOptions)

// WithTimeout sets the deadline of one run.
func WithTimeout(d time.Duration) RunOption {
	return func(o *RunOptions) {
		o.Timeout = d
	}
}

// WithEvents streams the run's events to ch.
func WithEvents(ch chan<- event.Event) RunOption {
	return func(o *RunOptions) {
		o.Events = ch
	}
}
