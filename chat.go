package maildraft

import (
	"context"
	"time"
)

// ChatProvider is implemented by the vendor adapters. Chat sends one
// conversation and returns the complete reply without retrying.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// CallOptions are the per-call knobs a vendor adapter honours. Zero
// values leave the adapter's own default in place.
type CallOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// CallOption adjusts CallOptions.
type CallOption func(*CallOptions)

func WithModel(model string) CallOption {
	return func(o *CallOptions) { o.Model = model }
}

func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature. Vendors accept 0 to 2,
// Anthropic only up to 1.
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// NewCallOptions folds opts into a CallOptions value.
func NewCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}


// Generator is the language-model service consumed by pipeline stages.
//
// Implementations fail with errors wrapping [ErrRateLimited],
// [ErrUnavailable] or [ErrTimeout].
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Generation, error)
}

// GenerateRequest is a single call to the language-model service.
type GenerateRequest struct {
	// Task names the stage issuing the call. Used for metrics and logs.
	Task string

	// System carries standing instructions for the model.
	System string

	// Prompt is the user turn.
	Prompt string

	// Input is the text the call transforms, if any. Local generators
	// answer with it unchanged.
	Input string

	// Temperature overrides the service default when set.
	Temperature *float64

	// MaxOutputTokens caps the response length. Zero uses the service default.
	MaxOutputTokens int
}

// Messages renders the request as a chat conversation.
func (r GenerateRequest) Messages() []Message {
	var msgs []Message
	if r.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.System})
	}
	return append(msgs, Message{Role: RoleUser, Content: r.Prompt})
}

// Generation is the outcome of a successful call.
type Generation struct {
	Text    string
	Model   string
	Usage   Usage
	Latency time.Duration
}
// Role is the speaker of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
}

// Response is a vendor's complete reply.
type Response struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
}

// Usage counts the tokens billed for a call.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
