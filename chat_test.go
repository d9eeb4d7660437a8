package maildraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageTotal(t *testing.T) {
	assert.Equal(t, 150, Usage{InputTokens: 100, OutputTokens: 50}.Total())
	assert.Zero(t, Usage{}.Total())
}

func TestGenerateRequestMessages(t *testing.T) {
	t.Run("system message first", func(t *testing.T) {
		msgs := GenerateRequest{System: "be brief", Prompt: "write"}.Messages()
		assert.Equal(t, []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "write"},
		}, msgs)
	})

	t.Run("no system message when empty", func(t *testing.T) {
		msgs := GenerateRequest{Prompt: "write"}.Messages()
		assert.Len(t, msgs, 1)
		assert.Equal(t, RoleUser, msgs[0].Role)
	})
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider("openai")
	assert.True(t, ok)
	assert.Equal(t, ProviderOpenAI, p)

	_, ok = ParseProvider("vertex")
	assert.False(t, ok)
}

func TestNewCallOptions(t *testing.T) {
	assert.Equal(t, CallOptions{}, NewCallOptions())

	o := NewCallOptions(WithModel("claude-haiku-4-5"), WithMaxTokens(100), WithMaxTokens(800), WithTemperature(0.2))
	assert.Equal(t, "claude-haiku-4-5", o.Model)
	assert.Equal(t, 800, o.MaxTokens)
	if assert.NotNil(t, o.Temperature) {
		assert.Equal(t, 0.2, *o.Temperature)
	}
}
