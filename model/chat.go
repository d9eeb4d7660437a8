package model

import ai "github.com/spetersoncode/maildraft"

// ChatModel is a model drafts can be written with.
type ChatModel struct {
	id       string
	provider ai.Provider
	pricing  Pricing
}

func (m ChatModel) String() string       { return m.id }
func (m ChatModel) Provider() ai.Provider { return m.provider }
func (m ChatModel) Pricing() Pricing      { return m.pricing }

// Cost estimates the USD cost of usage at this model's rates.
func (m ChatModel) Cost(usage ai.Usage) float64 {
	return m.pricing.Cost(usage)
}

func claude(id string, in, out float64) ChatModel {
	return ChatModel{id: id, provider: ai.ProviderAnthropic, pricing: Pricing{InputPerMillion: in, OutputPerMillion: out}}
}

func gpt(id string, in, out float64) ChatModel {
	return ChatModel{id: id, provider: ai.ProviderOpenAI, pricing: Pricing{InputPerMillion: in, OutputPerMillion: out}}
}

// gemini models switch to the long rates once a prompt passes
// LongContextTokens.
func gemini(id string, in, out, inLong, outLong float64) ChatModel {
	return ChatModel{id: id, provider: ai.ProviderGoogle, pricing: Pricing{
		InputPerMillion: in, OutputPerMillion: out,
		LongInputPerMillion: inLong, LongOutputPerMillion: outLong,
	}}
}

// Catalogued models. Prices in USD per million tokens.
var (
	ClaudeOpus45   = claude("claude-opus-4-5", 5.00, 25.00)
	ClaudeSonnet45 = claude("claude-sonnet-4-5", 3.00, 15.00)
	ClaudeHaiku45  = claude("claude-haiku-4-5", 1.00, 5.00)

	GPT5     = gpt("gpt-5", 1.25, 10.00)
	GPT5Mini = gpt("gpt-5-mini", 0.25, 1.00)
	GPT5Nano = gpt("gpt-5-nano", 0.10, 0.40)

	Gemini25Pro       = gemini("gemini-2.5-pro", 1.25, 10.00, 2.50, 15.00)
	Gemini25Flash     = gemini("gemini-2.5-flash", 0.15, 0.60, 0.15, 0.60)
	Gemini25FlashLite = gemini("gemini-2.5-flash-lite", 0.075, 0.30, 0.075, 0.30)
)

// Per-provider defaults. Seven model calls per draft favour the small tier.
var (
	DefaultClaudeModel = ClaudeHaiku45
	DefaultGPTModel    = GPT5Mini
	DefaultGeminiModel = Gemini25FlashLite
)

var catalogue = map[string]ChatModel{}

func init() {
	for _, m := range []ChatModel{
		ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
		GPT5, GPT5Mini, GPT5Nano,
		Gemini25Pro, Gemini25Flash, Gemini25FlashLite,
	} {
		catalogue[m.id] = m
	}
}

// Lookup finds a catalogued model by its API identifier.
func Lookup(id string) (ChatModel, bool) {
	m, ok := catalogue[id]
	return m, ok
}

// Default returns the drafting model used when a provider is configured
// without one. The stub provider has none.
func Default(p ai.Provider) (ChatModel, bool) {
	switch p {
	case ai.ProviderAnthropic:
		return DefaultClaudeModel, true
	case ai.ProviderOpenAI:
		return DefaultGPTModel, true
	case ai.ProviderGoogle:
		return DefaultGeminiModel, true
	}
	return ChatModel{}, false
}
