package workflow

import (
	"context"
	"sync"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/client"
)

// scriptedLLM answers per task. Tasks without a script are echoed like
// the stub does.
type scriptedLLM struct {
	mu      sync.Mutex
	answers map[string]func(ai.GenerateRequest) (string, error)
	calls   []ai.GenerateRequest
}

func newScripted() *scriptedLLM {
	return &scriptedLLM{answers: map[string]func(ai.GenerateRequest) (string, error){}}
}

func (s *scriptedLLM) on(task string, fn func(ai.GenerateRequest) (string, error)) *scriptedLLM {
	s.answers[task] = fn
	return s
}

func (s *scriptedLLM) reply(task, text string) *scriptedLLM {
	return s.on(task, func(ai.GenerateRequest) (string, error) { return text, nil })
}

func (s *scriptedLLM) fail(task string, err error) *scriptedLLM {
	return s.on(task, func(ai.GenerateRequest) (string, error) { return "", err })
}

func (s *scriptedLLM) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.Generation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	fn := s.answers[req.Task]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, ai.ClassifyCallError(err)
	}
	text := req.Input
	if fn != nil {
		var err error
		if text, err = fn(req); err != nil {
			return nil, err
		}
	}
	return &ai.Generation{
		Text:  text,
		Model: "scripted",
		Usage: ai.Usage{
			InputTokens:  client.EstimateTokens(req.Prompt),
			OutputTokens: client.EstimateTokens(text),
		},
	}, nil
}

func (s *scriptedLLM) tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Task)
	}
	return out
}

func (s *scriptedLLM) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var errUnavailable = ai.ClassifyCallError(ai.NewTransientError("boom", 503, nil))

func parsedState(prompt string) State {
	s := State{Request: ai.DraftRequest{Prompt: prompt}, Tone: ai.ToneFormal}
	s.Parsed = extract(s.Request)
	return s
}
