package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChat is a scripted ai.ChatProvider.
type fakeChat struct {
	calls   atomic.Int32
	respond func(ctx context.Context, n int, messages []ai.Message, o ai.CallOptions) (*ai.Response, error)
}

func (f *fakeChat) Chat(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (*ai.Response, error) {
	n := int(f.calls.Add(1))
	return f.respond(ctx, n, messages, ai.NewCallOptions(opts...))
}

func fastRetry(attempts int) *retry.Config {
	return &retry.Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestErrMissingAPIKey(t *testing.T) {
	t.Run("Error with model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "anthropic", Model: "claude-sonnet"}
		expected := `no API key configured for anthropic (required by model "claude-sonnet")`
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Error without model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "openai"}
		expected := "no API key configured for openai"
		assert.Equal(t, expected, err.Error())
	})
}

func TestNew(t *testing.T) {
	t.Run("uses provider default model", func(t *testing.T) {
		c := New(Config{Provider: ai.ProviderOpenAI})
		assert.Equal(t, "gpt-5-mini", c.Model())
		assert.Equal(t, ai.ProviderOpenAI, c.Provider())
	})

	t.Run("explicit model wins", func(t *testing.T) {
		c := New(Config{Provider: ai.ProviderAnthropic, Model: "claude-opus-4-5"})
		assert.Equal(t, "claude-opus-4-5", c.Model())
	})

	t.Run("stub provider", func(t *testing.T) {
		c := New(Config{Provider: ai.ProviderStub})
		assert.Equal(t, "stub", c.Model())
	})
}

func TestGenerateMissingKey(t *testing.T) {
	c := New(Config{Provider: ai.ProviderAnthropic})

	_, err := c.Generate(context.Background(), ai.GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrUnavailable)

	var missing *ErrMissingAPIKey
	assert.ErrorAs(t, err, &missing)
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeChat{respond: func(_ context.Context, _ int, messages []ai.Message, o ai.CallOptions) (*ai.Response, error) {
		require.Len(t, messages, 2)
		assert.Equal(t, ai.RoleSystem, messages[0].Role)
		assert.Equal(t, "gpt-5-mini", o.Model)
		require.NotNil(t, o.Temperature)
		assert.Equal(t, 0.2, *o.Temperature)
		assert.Equal(t, 300, o.MaxTokens)
		return &ai.Response{Content: "Dear Sam,", Usage: ai.Usage{InputTokens: 10, OutputTokens: 4}}, nil
	}}
	temp := 0.7
	c := New(Config{Provider: ai.ProviderOpenAI, Temperature: &temp, MaxOutputTokens: 300}, WithChatProvider(fake))

	reqTemp := 0.2
	gen, err := c.Generate(context.Background(), ai.GenerateRequest{
		Task:        "refine",
		System:      "be brief",
		Prompt:      "hello",
		Temperature: &reqTemp,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear Sam,", gen.Text)
	assert.Equal(t, "gpt-5-mini", gen.Model)
	assert.Equal(t, 14, gen.Usage.Total())
}

func TestGenerateRetriesTransient(t *testing.T) {
	fake := &fakeChat{respond: func(_ context.Context, n int, _ []ai.Message, _ ai.CallOptions) (*ai.Response, error) {
		if n < 3 {
			return nil, ai.NewTransientError("overloaded", 503, nil)
		}
		return &ai.Response{Content: "ok"}, nil
	}}
	events := make(chan Event, 50)
	c := New(Config{Provider: ai.ProviderAnthropic, Retry: fastRetry(3), Events: events}, WithChatProvider(fake))

	gen, err := c.Generate(context.Background(), ai.GenerateRequest{Task: "write_draft"})
	require.NoError(t, err)
	assert.Equal(t, "ok", gen.Text)
	assert.Equal(t, int32(3), fake.calls.Load())

	close(events)
	var retries int
	var last Event
	for e := range events {
		if e.Type == EventRetry {
			retries++
			assert.Equal(t, "write_draft", e.Task)
		}
		last = e
	}
	assert.Positive(t, retries)
	assert.Equal(t, EventRequestComplete, last.Type)
}

func TestGenerateClassifiesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", ai.NewStatusError("slow down", 429, 0, nil), ai.ErrRateLimited},
		{"server error", ai.NewStatusError("boom", 500, 0, nil), ai.ErrUnavailable},
		{"auth error", ai.NewStatusError("bad key", 401, 0, nil), ai.ErrUnavailable},
		{"plain error", errors.New("something odd"), ai.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeChat{respond: func(context.Context, int, []ai.Message, ai.CallOptions) (*ai.Response, error) {
				return nil, tt.err
			}}
			c := New(Config{Provider: ai.ProviderAnthropic, Retry: fastRetry(2)}, WithChatProvider(fake))

			_, err := c.Generate(context.Background(), ai.GenerateRequest{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateAttemptTimeout(t *testing.T) {
	fake := &fakeChat{respond: func(ctx context.Context, _ int, _ []ai.Message, _ ai.CallOptions) (*ai.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := New(Config{
		Provider:    ai.ProviderGoogle,
		Retry:       fastRetry(2),
		CallTimeout: 10 * time.Millisecond,
	}, WithChatProvider(fake))

	_, err := c.Generate(context.Background(), ai.GenerateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrTimeout)
	assert.Equal(t, int32(2), fake.calls.Load())
}

func TestGenerateCallerCancellation(t *testing.T) {
	fake := &fakeChat{respond: func(ctx context.Context, _ int, _ []ai.Message, _ ai.CallOptions) (*ai.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := New(Config{Provider: ai.ProviderOpenAI, Retry: fastRetry(3)}, WithChatProvider(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, ai.GenerateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateStubProvider(t *testing.T) {
	c := New(Config{Provider: ai.ProviderStub})

	gen, err := c.Generate(context.Background(), ai.GenerateRequest{Prompt: "ignored", Input: "echo me"})
	require.NoError(t, err)
	assert.Equal(t, "echo me", gen.Text)
	assert.Equal(t, "stub", gen.Model)
}
