package model

import (
	"testing"

	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
)

func TestPricingCost(t *testing.T) {
	flat := Pricing{InputPerMillion: 1, OutputPerMillion: 2}

	tests := []struct {
		name    string
		pricing Pricing
		usage   ai.Usage
		want    float64
	}{
		{"zero usage", flat, ai.Usage{}, 0},
		{"one draft", flat, ai.Usage{InputTokens: 1000, OutputTokens: 500}, 0.002},
		{"million each", flat, ai.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, 3},
		{"below long context", Gemini25Pro.Pricing(), ai.Usage{InputTokens: 100_000}, 0.125},
		{"long context", Gemini25Pro.Pricing(), ai.Usage{InputTokens: 300_000}, 0.75},
		{"untiered ignores size", ClaudeHaiku45.Pricing(), ai.Usage{InputTokens: 300_000}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.pricing.Cost(tt.usage), 1e-9)
		})
	}
}

func TestChatModelCost(t *testing.T) {
	usage := ai.Usage{InputTokens: 10_000, OutputTokens: 5_000}
	assert.InDelta(t, 0.105, ClaudeSonnet45.Cost(usage), 1e-9)
	assert.Greater(t, ClaudeSonnet45.Cost(usage), ClaudeHaiku45.Cost(usage))
}

func TestLookup(t *testing.T) {
	m, ok := Lookup("gpt-5-mini")
	assert.True(t, ok)
	assert.Equal(t, ai.ProviderOpenAI, m.Provider())
	assert.Equal(t, GPT5Mini, m)

	_, ok = Lookup("not-a-model")
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	for _, p := range []ai.Provider{ai.ProviderAnthropic, ai.ProviderOpenAI, ai.ProviderGoogle} {
		m, ok := Default(p)
		assert.True(t, ok)
		assert.Equal(t, p, m.Provider())
		_, catalogued := Lookup(m.String())
		assert.True(t, catalogued)
	}

	_, ok := Default(ai.ProviderStub)
	assert.False(t, ok)
}
