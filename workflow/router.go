package workflow

import (
	"context"
	"strings"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/event"
)

// Router decides how much of the pipeline a user-edited draft goes
// through. Small edits are only restyled and refined; larger ones seed a
// new draft.
type Router struct {
	orch      *Orchestrator
	threshold float64
	learn     bool
}

// RouterOption is a functional option for Router configuration.
type RouterOption func(*Router)

// WithThreshold sets the diff ratio from which the full path is taken.
func WithThreshold(t float64) RouterOption {
	return func(r *Router) {
		r.threshold = t
	}
}

// WithLearning toggles updating profile preferences from edits.
func WithLearning(enabled bool) RouterOption {
	return func(r *Router) {
		r.learn = enabled
	}
}

// NewRouter creates a router over orch.
func NewRouter(orch *Orchestrator, opts ...RouterOption) *Router {
	r := &Router{orch: orch, threshold: DefaultDiffThreshold, learn: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.threshold <= 0 || r.threshold > 1 {
		r.threshold = DefaultDiffThreshold
	}
	return r
}

// Threshold returns the configured lightweight/full boundary.
func (r *Router) Threshold() float64 { return r.threshold }

// Route returns the workflow type for a diff ratio.
func (r *Router) Route(diffRatio float64) ai.WorkflowType {
	if diffRatio < r.threshold {
		return ai.WorkflowLightweight
	}
	return ai.WorkflowFull
}

// Regenerate polishes an edited draft along the route its diff ratio
// selects.
func (r *Router) Regenerate(ctx context.Context, req ai.RegenerationRequest, opts ...RunOption) (*ai.RegenerationResult, error) {
	if strings.TrimSpace(req.EditedDraft) == "" {
		return nil, &ai.ValidationError{Reason: "edited draft is empty"}
	}

	ratio := DiffRatio(req.OriginalDraft, req.EditedDraft)
	route := r.Route(ratio)

	var ro RunOptions
	for _, opt := range opts {
		opt(&ro)
	}
	event.Emit(ro.Events, event.Event{
		Type:      event.RouteSelected,
		Route:     route,
		DiffRatio: ratio,
		Message:   string(route),
	})
	if r.orch.opts.Observer != nil {
		r.orch.opts.Observer.ObserveRoute(string(route), ratio)
	}
	r.orch.opts.Logger.Info("regeneration routed",
		"user_id", req.UserID, "workflow_type", route, "diff_ratio", ratio)

	s, err := r.orch.Prepare(ctx, ai.DraftRequest{
		Prompt:       req.EditedDraft,
		UserID:       req.UserID,
		Tone:         req.Tone,
		TargetLength: req.TargetLength,
		Recipient:    req.Recipient,
	})
	if err != nil {
		return nil, err
	}

	intent := ai.NormalizeIntent(string(req.Intent))
	s.Intent = intent
	s.Metadata = s.Metadata.Set(ownerOrchestrator, "workflow_type", string(route))

	var stages []Stage
	switch route {
	case ai.WorkflowLightweight:
		s.RawDraft = strings.TrimSpace(req.EditedDraft)
		stages = r.pick(StageStyleTone, StageRefine)
	default:
		s.Parsed = extract(s.Request)
		s.Seed = strings.TrimSpace(req.EditedDraft)
		stages = r.from(StageWriteDraft)
	}

	res, err := r.orch.execute(ctx, s, stages, KindRegenerate, opts...)
	if err != nil {
		return nil, err
	}

	r.learnFromEdit(ctx, req)

	out := &ai.RegenerationResult{
		FinalDraft:   res.Draft,
		WorkflowType: route,
		DiffRatio:    ratio,
		Metrics:      res.Metrics,
	}
	event.Emit(ro.Events, event.Event{Type: event.ResultReady, RunID: res.RequestID, Draft: out.FinalDraft, Regeneration: out})
	return out, nil
}

// pick returns the configured stages with the given names, in pipeline
// order.
func (r *Router) pick(names ...string) []Stage {
	var out []Stage
	for _, st := range r.orch.opts.Stages {
		for _, n := range names {
			if st.Name() == n {
				out = append(out, st)
			}
		}
	}
	if len(out) == 0 {
		out, _ = StagesByName(names, DefaultRefineMinRatio)
	}
	return out
}

// from returns the configured stages starting at name.
func (r *Router) from(name string) []Stage {
	for i, st := range r.orch.opts.Stages {
		if st.Name() == name {
			return r.orch.opts.Stages[i:]
		}
	}
	for i, n := range DefaultStageOrder {
		if n == name {
			stages, _ := StagesByName(DefaultStageOrder[i:], DefaultRefineMinRatio)
			return stages
		}
	}
	return nil
}
