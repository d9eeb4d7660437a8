package api

import (
	"context"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/event"
	"github.com/spetersoncode/maildraft/workflow"
)

// Service runs wire requests through the pipeline. It is shared by the
// HTTP handlers and the MCP tools.
type Service struct {
	orch   *workflow.Orchestrator
	router *workflow.Router
}

// NewService creates a service. A nil router regenerates with the default
// threshold.
func NewService(orch *workflow.Orchestrator, router *workflow.Router) *Service {
	if router == nil {
		router = workflow.NewRouter(orch)
	}
	return &Service{orch: orch, router: router}
}

// Generate drafts an email.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	dr, err := req.DraftRequest()
	if err != nil {
		return nil, err
	}
	res, err := s.orch.Run(ctx, dr)
	if err != nil {
		return nil, err
	}
	return NewGenerateResponse(res), nil
}

// Stream drafts an email, reporting progress as pipeline events.
func (s *Service) Stream(ctx context.Context, req ai.DraftRequest) <-chan event.Event {
	return s.orch.RunStream(ctx, req)
}

// Regenerate polishes a hand-edited draft.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (*RegenerateResponse, error) {
	rr, err := req.RegenerationRequest()
	if err != nil {
		return nil, err
	}
	res, err := s.router.Regenerate(ctx, rr)
	if err != nil {
		return nil, err
	}
	return NewRegenerateResponse(res), nil
}
