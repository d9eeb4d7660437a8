// Package metrics aggregates language-model usage for pipeline runs and
// for the whole process.
package metrics

import (
	"sync"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/model"
)

// Call describes one remote call made by a pipeline stage.
type Call struct {
	Model        string
	Stage        string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
	Failed       bool
}

// PriceFunc returns the cost in USD of a call. ok is false when the model
// has no known rate.
type PriceFunc func(modelID string, usage ai.Usage) (cost float64, ok bool)

// Observer receives every recorded call after it is accumulated.
type Observer interface {
	ObserveCall(Call)
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithPricing enables cost estimation.
func WithPricing(fn PriceFunc) Option {
	return func(a *Accumulator) {
		a.price = fn
	}
}

// WithObserver forwards every recorded call to o.
func WithObserver(o Observer) Option {
	return func(a *Accumulator) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}

// Accumulator collects call figures. Safe for concurrent use.
type Accumulator struct {
	price     PriceFunc
	observers []Observer

	mu      sync.Mutex
	calls   int
	failed  int
	input   int
	output  int
	latency time.Duration
	cost    float64
}

// New returns an empty accumulator.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record adds one call. Failed calls count towards llm_calls and
// failed_calls but carry no tokens.
func (a *Accumulator) Record(c Call) {
	var cost float64
	if a.price != nil && !c.Failed {
		if v, ok := a.price(c.Model, ai.Usage{InputTokens: c.InputTokens, OutputTokens: c.OutputTokens}); ok {
			cost = v
		}
	}

	a.mu.Lock()
	a.calls++
	if c.Failed {
		a.failed++
	} else {
		a.input += c.InputTokens
		a.output += c.OutputTokens
	}
	a.latency += c.Latency
	a.cost += cost
	a.mu.Unlock()

	for _, o := range a.observers {
		o.ObserveCall(c)
	}
}

// Summary returns a snapshot of the accumulated figures. The cost is only
// present when pricing is configured.
func (a *Accumulator) Summary() ai.MetricsSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ai.MetricsSummary{
		LLMCalls:     a.calls,
		FailedCalls:  a.failed,
		InputTokens:  a.input,
		OutputTokens: a.output,
		TotalTokens:  a.input + a.output,
	}
	if a.calls > 0 {
		s.AvgLatencyMS = float64(a.latency.Microseconds()) / 1000 / float64(a.calls)
	}
	if a.price != nil {
		cost := a.cost
		s.EstimatedCostUSD = &cost
	}
	return s
}

// CatalogPricing prices calls with the model catalogue. Models outside the
// catalogue, such as the local stub, cost nothing.
func CatalogPricing() PriceFunc {
	return func(modelID string, usage ai.Usage) (float64, bool) {
		m, ok := model.Lookup(modelID)
		if !ok {
			return 0, false
		}
		return m.Cost(usage), true
	}
}

// FixedPricing prices every call at the given per-million-token rates.
func FixedPricing(inputPerMillion, outputPerMillion float64) PriceFunc {
	return func(_ string, usage ai.Usage) (float64, bool) {
		p := model.Pricing{InputPerMillion: inputPerMillion, OutputPerMillion: outputPerMillion}
		return p.Cost(usage), true
	}
}
