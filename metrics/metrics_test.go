package metrics

import (
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recordingObserver) ObserveCall(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func TestAccumulatorEmpty(t *testing.T) {
	s := New().Summary()
	assert.Zero(t, s.LLMCalls)
	assert.Zero(t, s.AvgLatencyMS)
	assert.Nil(t, s.EstimatedCostUSD)
}

func TestAccumulatorSummary(t *testing.T) {
	a := New()
	a.Record(Call{Model: "m", Stage: "parse", InputTokens: 100, OutputTokens: 20, Latency: 100 * time.Millisecond})
	a.Record(Call{Model: "m", Stage: "write_draft", InputTokens: 300, OutputTokens: 200, Latency: 300 * time.Millisecond})
	a.Record(Call{Model: "m", Stage: "refine", InputTokens: 50, Latency: 200 * time.Millisecond, Failed: true})

	s := a.Summary()
	assert.Equal(t, 3, s.LLMCalls)
	assert.Equal(t, 1, s.FailedCalls)
	assert.Equal(t, 400, s.InputTokens)
	assert.Equal(t, 220, s.OutputTokens)
	assert.Equal(t, s.InputTokens+s.OutputTokens, s.TotalTokens)
	assert.InDelta(t, 200.0, s.AvgLatencyMS, 0.001)
}

func TestAccumulatorPricing(t *testing.T) {
	a := New(WithPricing(FixedPricing(1.0, 2.0)))
	a.Record(Call{Model: "anything", InputTokens: 1_000_000, OutputTokens: 500_000})
	a.Record(Call{Model: "anything", InputTokens: 1_000_000, Failed: true})

	s := a.Summary()
	require.NotNil(t, s.EstimatedCostUSD)
	assert.InDelta(t, 2.0, *s.EstimatedCostUSD, 1e-9)
}

func TestCatalogPricing(t *testing.T) {
	price := CatalogPricing()

	cost, ok := price("claude-haiku-4-5", ai.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000})
	require.True(t, ok)
	assert.InDelta(t, 6.0, cost, 1e-9)

	_, ok = price("stub", ai.Usage{InputTokens: 10})
	assert.False(t, ok)

	a := New(WithPricing(price))
	a.Record(Call{Model: "stub", InputTokens: 10, OutputTokens: 10})
	require.NotNil(t, a.Summary().EstimatedCostUSD)
	assert.Zero(t, *a.Summary().EstimatedCostUSD)
}

func TestAccumulatorObservers(t *testing.T) {
	obs := &recordingObserver{}
	a := New(WithObserver(obs), WithObserver(nil))
	a.Record(Call{Stage: "parse"})
	a.Record(Call{Stage: "refine"})

	require.Len(t, obs.calls, 2)
	assert.Equal(t, "refine", obs.calls[1].Stage)
}

func TestAccumulatorConcurrentRecord(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				a.Record(Call{InputTokens: 2, OutputTokens: 1, Latency: time.Millisecond})
			}
		}()
	}
	wg.Wait()

	s := a.Summary()
	assert.Equal(t, 1000, s.LLMCalls)
	assert.Equal(t, 2000, s.InputTokens)
	assert.Equal(t, 3000, s.TotalTokens)
}
