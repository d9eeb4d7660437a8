package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/internal/provider/anthropic"
	"github.com/spetersoncode/maildraft/internal/provider/google"
	"github.com/spetersoncode/maildraft/internal/provider/openai"
	"github.com/spetersoncode/maildraft/internal/retry"
	"github.com/spetersoncode/maildraft/model"
)

// DefaultCallTimeout bounds a single attempt when Config.CallTimeout is zero.
const DefaultCallTimeout = 30 * time.Second

// APIKeys holds API keys for different providers.
// Only configure the key for the provider you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Vertex routes Google calls through Vertex AI instead of the Gemini API.
type Vertex struct {
	Project  string
	Location string
}

// Config holds configuration for creating a client.
type Config struct {
	// Provider selects the vendor. ProviderStub answers locally.
	Provider ai.Provider

	// Model is the vendor model identifier. Empty uses the provider default.
	Model string

	// APIKeys contains authentication keys for each provider.
	APIKeys APIKeys

	// Vertex, when set, sends Google calls through Vertex AI.
	Vertex *Vertex

	// Retry configures retry behavior for transient errors.
	// If nil, uses the default retry configuration.
	Retry *retry.Config

	// CallTimeout bounds each attempt. Zero uses DefaultCallTimeout.
	CallTimeout time.Duration

	// Temperature is used when a request does not set its own.
	Temperature *float64

	// MaxOutputTokens is used when a request does not set its own.
	MaxOutputTokens int

	// Events is an optional channel for receiving client operation events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event

	// Logger receives debug output for each call. Nil discards it.
	Logger *slog.Logger
}

// ErrMissingAPIKey is returned when the configured provider has no API key.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithChatProvider replaces the vendor adapter. The configured provider
// name is still reported in events and the model id is passed through.
func WithChatProvider(p ai.ChatProvider) ClientOption {
	return func(c *Client) {
		c.chat = p
	}
}

// Client implements ai.Generator against a single vendor.
// The vendor client is lazily initialized on first use.
type Client struct {
	provider    ai.Provider
	model       string
	apiKeys     APIKeys
	vertex      *Vertex
	retryConfig retry.Config
	callTimeout time.Duration
	temperature *float64
	maxTokens   int
	events      chan<- Event
	logger      *slog.Logger
	stub        *Stub

	mu      sync.Mutex
	chat    ai.ChatProvider
	initErr error
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...ClientOption) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	modelID := cfg.Model
	if modelID == "" {
		if m, ok := model.Default(cfg.Provider); ok {
			modelID = m.String()
		}
	}

	c := &Client{
		provider:    cfg.Provider,
		model:       modelID,
		apiKeys:     cfg.APIKeys,
		vertex:      cfg.Vertex,
		retryConfig: retryConfig,
		callTimeout: timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		events:      cfg.Events,
		logger:      logger,
	}
	if cfg.Provider == ai.ProviderStub {
		c.stub = NewStub()
		c.model = c.stub.Model
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the configured vendor.
func (c *Client) Provider() ai.Provider { return c.provider }

// Model returns the model identifier sent with every call.
func (c *Client) Model() string { return c.model }

// chatProvider returns the vendor adapter, initializing it if needed.
// A failed initialization is remembered.
func (c *Client) chatProvider(ctx context.Context) (ai.ChatProvider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chat != nil {
		return c.chat, nil
	}
	if c.initErr != nil {
		return nil, c.initErr
	}

	switch c.provider {
	case ai.ProviderAnthropic:
		if c.apiKeys.Anthropic == "" {
			return nil, &ErrMissingAPIKey{Provider: "anthropic", Model: c.model}
		}
		c.chat = anthropic.New(c.apiKeys.Anthropic, anthropic.WithModel(c.model))
	case ai.ProviderOpenAI:
		if c.apiKeys.OpenAI == "" {
			return nil, &ErrMissingAPIKey{Provider: "openai", Model: c.model}
		}
		c.chat = openai.New(c.apiKeys.OpenAI, openai.WithModel(c.model))
	case ai.ProviderGoogle:
		opts := []google.ClientOption{google.WithModel(c.model)}
		if c.vertex != nil {
			opts = append(opts, google.WithVertex(c.vertex.Project, c.vertex.Location))
		} else if c.apiKeys.Google == "" {
			return nil, &ErrMissingAPIKey{Provider: "google", Model: c.model}
		}
		client, err := google.New(ctx, c.apiKeys.Google, opts...)
		if err != nil {
			c.initErr = fmt.Errorf("failed to initialize Google client: %w", err)
			return nil, c.initErr
		}
		c.chat = client
	default:
		return nil, fmt.Errorf("unsupported provider: %q", c.provider)
	}
	return c.chat, nil
}

// Generate performs one model call with retries. Failures wrap exactly one
// of ai.ErrRateLimited, ai.ErrUnavailable or ai.ErrTimeout.
func (c *Client) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.Generation, error) {
	if c.stub != nil && c.chat == nil {
		return c.stub.Generate(ctx, req)
	}

	chat, err := c.chatProvider(ctx)
	if err != nil {
		return nil, ai.ClassifyCallError(err)
	}

	opts := []ai.CallOption{ai.WithModel(c.model)}
	if t := req.Temperature; t != nil {
		opts = append(opts, ai.WithTemperature(*t))
	} else if c.temperature != nil {
		opts = append(opts, ai.WithTemperature(*c.temperature))
	}
	if req.MaxOutputTokens > 0 {
		opts = append(opts, ai.WithMaxTokens(req.MaxOutputTokens))
	} else if c.maxTokens > 0 {
		opts = append(opts, ai.WithMaxTokens(c.maxTokens))
	}
	messages := req.Messages()

	start := time.Now()
	emit(c.events, Event{
		Type:     EventRequestStart,
		Task:     req.Task,
		Provider: c.provider,
		Model:    c.model,
	})

	// Create retry events channel if client events are enabled
	var retryEvents chan retry.Event
	var forwarded sync.WaitGroup
	if c.events != nil {
		retryEvents = make(chan retry.Event, 10)
		forwarded.Add(1)
		go func() {
			defer forwarded.Done()
			c.forwardRetryEvents(retryEvents, req.Task)
		}()
	}

	resp, err := retry.DoWithEvents(ctx, c.retryConfig, retryEvents, func() (*ai.Response, error) {
		return c.attempt(ctx, chat, messages, opts)
	})

	if retryEvents != nil {
		close(retryEvents)
		forwarded.Wait()
	}

	elapsed := time.Since(start)
	if err != nil {
		err = ai.ClassifyCallError(err)
		c.logger.Debug("model call failed",
			"task", req.Task,
			"provider", c.provider,
			"model", c.model,
			"duration", elapsed,
			"error", err)
		emit(c.events, Event{
			Type:     EventRequestError,
			Task:     req.Task,
			Provider: c.provider,
			Model:    c.model,
			Duration: elapsed,
			Error:    err,
		})
		return nil, err
	}

	c.logger.Debug("model call complete",
		"task", req.Task,
		"model", c.model,
		"duration", elapsed,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)
	emit(c.events, Event{
		Type:     EventRequestComplete,
		Task:     req.Task,
		Provider: c.provider,
		Model:    c.model,
		Duration: elapsed,
		Usage:    &resp.Usage,
	})

	return &ai.Generation{
		Text:    resp.Content,
		Model:   c.model,
		Usage:   resp.Usage,
		Latency: elapsed,
	}, nil
}

// attempt runs a single vendor call under the per-attempt timeout. An
// attempt that runs out of time while the caller is still waiting is
// reported as a transient timeout so it is retried.
func (c *Client) attempt(ctx context.Context, chat ai.ChatProvider, messages []ai.Message, opts []ai.CallOption) (*ai.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := chat.Chat(attemptCtx, messages, opts...)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, ai.NewTransientError("model call exceeded "+c.callTimeout.String(), 0,
			fmt.Errorf("%w: %w", ai.ErrTimeout, err))
	}
	return nil, err
}

func (c *Client) forwardRetryEvents(retryEvents <-chan retry.Event, task string) {
	for re := range retryEvents {
		emit(c.events, Event{
			Type:       EventRetry,
			Task:       task,
			Provider:   c.provider,
			Model:      c.model,
			RetryEvent: &re,
		})
	}
}

var _ ai.Generator = (*Client)(nil)
