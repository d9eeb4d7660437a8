package workflow

import (
	"context"
	"slices"
	"sync"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/metrics"
)

// meter records every call of one run into the run's accumulator and
// the process-wide one.
type meter struct {
	next   ai.Generator
	run    *metrics.Accumulator
	global *metrics.Accumulator

	mu     sync.Mutex
	models []string
}

func newMeter(next ai.Generator, pricing metrics.PriceFunc, global *metrics.Accumulator) *meter {
	var opts []metrics.Option
	if pricing != nil {
		opts = append(opts, metrics.WithPricing(pricing))
	}
	return &meter{next: next, run: metrics.New(opts...), global: global}
}

func (m *meter) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.Generation, error) {
	start := time.Now()
	gen, err := m.next.Generate(ctx, req)

	call := metrics.Call{Stage: req.Task, Latency: time.Since(start)}
	if err != nil {
		call.Failed = true
		if mm, ok := m.next.(interface{ Model() string }); ok {
			call.Model = mm.Model()
		}
	} else {
		call.Model = gen.Model
		call.InputTokens = gen.Usage.InputTokens
		call.OutputTokens = gen.Usage.OutputTokens
		if gen.Latency > 0 {
			call.Latency = gen.Latency
		}
		m.addModel(gen.Model)
	}

	m.run.Record(call)
	if m.global != nil {
		m.global.Record(call)
	}
	return gen, err
}

func (m *meter) addModel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" && !slices.Contains(m.models, id) {
		m.models = append(m.models, id)
	}
}

// Models returns the distinct models that answered, in first-use order.
func (m *meter) Models() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.models)
}
