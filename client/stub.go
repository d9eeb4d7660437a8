package client

import (
	"context"
	"time"

	ai "github.com/spetersoncode/maildraft"
)

// Stub is a local generator that needs no network access. It answers each
// call with the request's Input, so stages that supply a heuristic result
// as Input get that result back unchanged.
type Stub struct {
	// Model is reported on every generation.
	Model string

	// Latency is simulated before answering. It honors cancellation.
	Latency time.Duration
}

// NewStub returns a stub generator reporting the model "stub".
func NewStub() *Stub {
	return &Stub{Model: "stub"}
}

// Generate echoes req.Input. Token usage is estimated at four characters
// per token.
func (s *Stub) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.Generation, error) {
	start := time.Now()
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ai.ClassifyCallError(ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, ai.ClassifyCallError(err)
	}

	return &ai.Generation{
		Text:  req.Input,
		Model: s.Model,
		Usage: ai.Usage{
			InputTokens:  EstimateTokens(req.System) + EstimateTokens(req.Prompt),
			OutputTokens: EstimateTokens(req.Input),
		},
		Latency: time.Since(start),
	}, nil
}

// EstimateTokens approximates a token count from text length.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

var _ ai.Generator = (*Stub)(nil)
