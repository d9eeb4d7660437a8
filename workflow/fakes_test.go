package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	ai "github.com/spetersoncode/maildraft"
)

type fakeHistory struct {
	mu      sync.Mutex
	entries map[string][]ai.HistoryEntry
	err     error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{entries: map[string][]ai.HistoryEntry{}}
}

func (h *fakeHistory) Append(_ context.Context, userID string, r ai.DraftResult) error {
	if h.err != nil {
		return h.err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[userID] = append([]ai.HistoryEntry{ai.NewHistoryEntry(userID, r)}, h.entries[userID]...)
	return nil
}

func (h *fakeHistory) List(_ context.Context, userID string, limit int) ([]ai.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.entries[userID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]ai.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]ai.Profile{}}
}

func (p *fakeProfiles) Get(_ context.Context, userID string) (ai.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof := p.profiles[userID]
	prof.UserID = userID
	return prof, nil
}

func (p *fakeProfiles) Update(_ context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof := p.profiles[userID].Apply(u)
	prof.UserID = userID
	p.profiles[userID] = prof
	return prof, nil
}

type fakeObserver struct {
	mu            sync.Mutex
	runs          []string
	routes        []string
	persistErrors int
}

func (o *fakeObserver) ObserveRun(mode, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, mode+"/"+status)
}

func (o *fakeObserver) ObserveRoute(wt string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, wt)
}

func (o *fakeObserver) ObservePersistError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persistErrors++
}

type chanPublisher chan RunRecord

func (c chanPublisher) Publish(_ context.Context, r RunRecord) error {
	c <- r
	return nil
}

// stageFunc adapts a function to the Stage interface.
type stageFunc struct {
	name string
	fn   func(ctx context.Context, s State) (State, error)
}

func (f stageFunc) Name() string { return f.name }

func (f stageFunc) Transform(ctx context.Context, _ ai.Generator, s State) (State, error) {
	return f.fn(ctx, s)
}

// waitForDeadline blocks until the run's context expires.
var waitForDeadline = stageFunc{name: "wait", fn: func(ctx context.Context, s State) (State, error) {
	<-ctx.Done()
	return s, ctx.Err()
}}

var errStoreDown = errors.New("store down")
