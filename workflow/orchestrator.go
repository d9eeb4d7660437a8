package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/client"
	"github.com/spetersoncode/maildraft/event"
)

// Metadata keys written by the orchestrator itself.
const (
	ownerOrchestrator = "orchestrator"

	MetaSource   = "source"
	MetaTimedOut = "timed_out"
	MetaModels   = "models"
	MetaStages   = "stages"
	MetaRefined  = "refined"
)

// Profile preference keys maintained by learn-from-edits.
const (
	PrefPreferredLength = "preferred_length"
	PrefEditTendency    = "edit_tendency"
)

// Run statuses reported to the Observer.
const (
	statusOK       = "ok"
	statusTimedOut = "timed_out"
	statusInvalid  = "invalid"
	statusError    = "error"
)

// Orchestrator runs the stage pipeline for draft requests.
type Orchestrator struct {
	llm  ai.Generator
	opts Options
}

// New creates an orchestrator calling llm. A nil llm routes every call to
// the stub generator.
func New(llm ai.Generator, opts ...Option) *Orchestrator {
	o := Options{
		HistoryLimit:   DefaultHistoryLimit,
		RunTimeout:     DefaultRunTimeout,
		PersistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Stages == nil {
		o.Stages = DefaultStages()
	}
	if o.Stub == nil {
		o.Stub = client.NewStub()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	return &Orchestrator{llm: llm, opts: o}
}

// Stages returns the configured stage sequence.
func (o *Orchestrator) Stages() []Stage { return o.opts.Stages }

// Run drafts an email for req through every configured stage.
func (o *Orchestrator) Run(ctx context.Context, req ai.DraftRequest, opts ...RunOption) (*ai.DraftResult, error) {
	s, err := o.Prepare(ctx, req)
	if err != nil {
		var ro RunOptions
		for _, opt := range opts {
			opt(&ro)
		}
		event.Emit(ro.Events, event.Event{Type: event.RunError, Error: err, Message: err.Error()})
		return nil, err
	}
	return o.execute(ctx, s, o.opts.Stages, KindDraft, opts...)
}

// RunStream runs the pipeline in the background and streams its events.
// The channel is closed once the run has finished; the final result is
// carried by the ResultReady event.
func (o *Orchestrator) RunStream(ctx context.Context, req ai.DraftRequest, opts ...RunOption) <-chan event.Event {
	ch := event.NewChannel()
	go func() {
		defer close(ch)
		// Failures reach the stream as RunError events.
		_, _ = o.Run(ctx, req, append(opts, WithEvents(ch))...)
	}()
	return ch
}

// Prepare builds the initial state of a run: resolved tone, sender
// profile, effective target length and context mode.
func (o *Orchestrator) Prepare(ctx context.Context, req ai.DraftRequest) (State, error) {
	tone, err := ai.ParseTone(string(req.Tone))
	if err != nil {
		return State{}, &ai.ValidationError{Reason: err.Error()}
	}
	req.Tone = tone

	s := State{Request: req, Tone: tone, ContextMode: ai.ContextFresh}
	logger := o.opts.Logger.With("user_id", req.UserID)

	if o.opts.Profiles != nil && req.UserID != "" {
		p, err := o.opts.Profiles.Get(ctx, req.UserID)
		if err != nil {
			logger.Warn("profile lookup failed", "error", err)
		} else {
			s.Profile = p
		}
	}

	s.TargetLength = req.TargetLength
	if s.TargetLength <= 0 {
		if n, err := strconv.Atoi(s.Profile.Preferences[PrefPreferredLength]); err == nil && n > 0 {
			s.TargetLength = n
		}
	}

	// The reset flag applies to this request only; the next request
	// without it sees the history again.
	if !req.ResetContext && o.opts.History != nil && req.UserID != "" {
		entries, err := o.opts.History.List(ctx, req.UserID, o.opts.HistoryLimit)
		switch {
		case err != nil:
			logger.Warn("history lookup failed", "error", err)
		case len(entries) > 0:
			s.History = entries
			s.ContextMode = ai.ContextContextual
		}
	}
	return s, nil
}

// Execute runs stages over a prepared state and finalizes the result.
func (o *Orchestrator) Execute(ctx context.Context, s State, stages []Stage, opts ...RunOption) (*ai.DraftResult, error) {
	return o.execute(ctx, s, stages, KindDraft, opts...)
}

func (o *Orchestrator) execute(ctx context.Context, s State, stages []Stage, kind string, opts ...RunOption) (*ai.DraftResult, error) {
	ro := RunOptions{Timeout: o.opts.RunTimeout}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	start := time.Now()
	logger := o.opts.Logger.With("run_id", runID, "user_id", s.Request.UserID, "kind", kind)
	m := newMeter(o.generatorFor(s.Request), o.opts.Pricing, o.opts.Usage)

	event.Emit(ro.Events, event.Event{Type: event.RunStart, RunID: runID})
	logger.Debug("run started", "stages", len(stages), "context_mode", s.ContextMode)

	fail := func(err error, status string) (*ai.DraftResult, error) {
		event.Emit(ro.Events, event.Event{Type: event.RunError, RunID: runID, Error: err, Message: err.Error()})
		o.observeRun(s.ContextMode, status, time.Since(start))
		return nil, err
	}

	var ran []string
	timedOut := false
	for i, st := range stages {
		if err := ctx.Err(); err != nil {
			if s.Draft() == "" {
				logger.Warn("run deadline expired before a draft existed", "stage", st.Name())
				return fail(&ai.ServiceError{
					Stage:    st.Name(),
					Err:      fmt.Errorf("%w: %w", ai.ErrTimeout, err),
					Fallback: FallbackDraft(s),
				}, statusError)
			}
			timedOut = true
			s.Metadata = s.Metadata.Set(ownerOrchestrator, MetaTimedOut, true)
			for _, rest := range stages[i:] {
				event.Emit(ro.Events, event.Event{Type: event.StageSkipped, RunID: runID, Stage: rest.Name()})
			}
			logger.Warn("run deadline expired, returning partial draft", "next_stage", st.Name())
			break
		}

		event.Emit(ro.Events, event.Event{Type: event.StageStart, RunID: runID, Stage: st.Name()})
		stageStart := time.Now()
		next, err := st.Transform(ctx, m, s)
		if err != nil {
			var verr *ai.ValidationError
			if errors.As(err, &verr) {
				logger.Info("request rejected", "stage", st.Name(), "reason", verr.Reason)
				return fail(err, statusInvalid)
			}
			if isFatal(st) {
				logger.Error("fatal stage failure", "stage", st.Name(), "error", err)
				return fail(&ai.ServiceError{Stage: st.Name(), Err: err, Fallback: FallbackDraft(s)}, statusError)
			}
			logger.Warn("stage failed, continuing with previous draft", "stage", st.Name(), "error", err)
			s.Notes = s.Notes.With(st.Name()+"_failed", err.Error())
			event.Emit(ro.Events, event.Event{Type: event.StageFailed, RunID: runID, Stage: st.Name(), Error: err, Message: err.Error()})
			continue
		}

		s = mergeState(st.Name(), s, next)
		ran = append(ran, st.Name())
		logger.Debug("stage completed", "stage", st.Name(), "duration", time.Since(stageStart))
		event.Emit(ro.Events, event.Event{Type: event.StageEnd, RunID: runID, Stage: st.Name(), Draft: s.Draft()})
	}

	draft := s.Draft()
	if draft == "" {
		return fail(&ai.ServiceError{Err: ErrNoDraft, Fallback: FallbackDraft(s)}, statusError)
	}

	if _, ok := s.Metadata.Get(MetaRefined); !ok {
		s.Metadata = s.Metadata.Set(StageRefine, MetaRefined, false)
	}
	models := m.Models()
	s.Metadata = s.Metadata.
		Set(ownerOrchestrator, MetaSource, sourceOf(s.Request, models)).
		Set(ownerOrchestrator, MetaModels, models).
		Set(ownerOrchestrator, MetaStages, ran)

	result := &ai.DraftResult{
		RequestID:   runID,
		UserID:      s.Request.UserID,
		Draft:       draft,
		WordCount:   ai.WordCount(draft),
		Tone:        s.Tone,
		Intent:      s.Intent,
		ContextMode: s.ContextMode,
		ReviewNotes: map[string]string(s.Notes.merge(nil)),
		Metadata:    s.Metadata.Map(),
		Metrics:     m.run.Summary(),
		CreatedAt:   time.Now().UTC(),
	}
	if result.Intent == "" {
		result.Intent = ai.IntentUnknown
	}

	if s.Request.SaveToHistory {
		result.Saved = o.persist(ctx, logger, *result)
	}

	status := statusOK
	if timedOut {
		status = statusTimedOut
	}
	d := time.Since(start)
	o.observeRun(s.ContextMode, status, d)
	o.publish(ctx, logger, RunRecord{
		RunID:       runID,
		UserID:      result.UserID,
		Kind:        kind,
		Intent:      result.Intent,
		Tone:        result.Tone,
		ContextMode: result.ContextMode,
		WordCount:   result.WordCount,
		Metrics:     result.Metrics,
		TimedOut:    timedOut,
		Saved:       result.Saved,
		Duration:    d,
		CreatedAt:   result.CreatedAt,
	})

	logger.Info("run completed",
		"duration", d,
		"llm_calls", result.Metrics.LLMCalls,
		"total_tokens", result.Metrics.TotalTokens,
		"timed_out", timedOut,
		"saved", result.Saved,
	)
	event.Emit(ro.Events, event.Event{Type: event.ResultReady, RunID: runID, Draft: draft, Result: result})
	event.Emit(ro.Events, event.Event{Type: event.RunEnd, RunID: runID})
	return result, nil
}

// mergeState folds a stage's output into the run state. Metadata keys are
// accepted only on behalf of the stage and notes are never dropped.
func mergeState(stage string, prev, next State) State {
	out := next
	out.Metadata = prev.Metadata.Merge(stage, next.Metadata)
	out.Notes = prev.Notes.merge(next.Notes)
	return out
}

func (o *Orchestrator) generatorFor(req ai.DraftRequest) ai.Generator {
	if req.UseStub || o.llm == nil {
		return o.opts.Stub
	}
	return o.llm
}

// sourceOf is "llm" when any call of the run reached a real model and
// "stub" otherwise.
func sourceOf(req ai.DraftRequest, models []string) string {
	if req.UseStub {
		return "stub"
	}
	if len(models) == 0 {
		return "stub"
	}
	for _, id := range models {
		if id != "stub" {
			return "llm"
		}
	}
	return "stub"
}

// persist writes the result to history. Failures are logged and counted,
// never returned.
func (o *Orchestrator) persist(ctx context.Context, logger *slog.Logger, r ai.DraftResult) bool {
	if o.opts.History == nil || r.UserID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.PersistTimeout)
	defer cancel()

	if err := o.opts.History.Append(ctx, r.UserID, r); err != nil {
		perr := &ai.PersistenceError{UserID: r.UserID, Err: err}
		logger.Error("history write failed", "error", perr)
		if o.opts.Observer != nil {
			o.opts.Observer.ObservePersistError()
		}
		return false
	}
	return true
}

// publish hands the record to the publisher without waiting for it.
func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, r RunRecord) {
	if o.opts.Publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, o.opts.PersistTimeout)
		defer cancel()
		if err := o.opts.Publisher.Publish(ctx, r); err != nil {
			logger.Warn("run publish failed", "error", err)
		}
	}()
}

func (o *Orchestrator) observeRun(mode ai.ContextMode, status string, d time.Duration) {
	if o.opts.Observer != nil {
		o.opts.Observer.ObserveRun(string(mode), status, d)
	}
}
