package workflow

import (
	"context"
	"time"

	ai "github.com/spetersoncode/maildraft"
)

// HistoryStore persists finished drafts per user.
type HistoryStore interface {
	// Append stores r under userID. Appending the same request id twice
	// stores it once.
	Append(ctx context.Context, userID string, r ai.DraftResult) error

	// List returns up to limit entries, most recent first.
	List(ctx context.Context, userID string, limit int) ([]ai.HistoryEntry, error)
}

// ProfileStore reads and updates sender profiles.
type ProfileStore interface {
	// Get returns the profile of userID, empty when none exists.
	Get(ctx context.Context, userID string) (ai.Profile, error)

	// Update applies u and returns the stored profile.
	Update(ctx context.Context, userID string, u ai.ProfileUpdate) (ai.Profile, error)
}

// Publisher announces completed runs.
type Publisher interface {
	Publish(ctx context.Context, r RunRecord) error
}

// Observer receives run-level measurements.
type Observer interface {
	ObserveRun(contextMode, status string, d time.Duration)
	ObserveRoute(workflowType string, diffRatio float64)
	ObservePersistError()
}

// Run kinds carried by RunRecord.
const (
	KindDraft      = "draft"
	KindRegenerate = "regenerate"
)

// RunRecord summarizes one completed run for downstream consumers.
type RunRecord struct {
	RunID       string            `json:"run_id"`
	UserID      string            `json:"user_id,omitempty"`
	Kind        string            `json:"kind"`
	Intent      ai.Intent         `json:"intent"`
	Tone        ai.Tone           `json:"tone"`
	ContextMode ai.ContextMode    `json:"context_mode"`
	WordCount   int               `json:"word_count"`
	Metrics     ai.MetricsSummary `json:"metrics"`
	TimedOut    bool              `json:"timed_out"`
	Saved       bool              `json:"saved"`
	Duration    time.Duration     `json:"duration_ns"`
	CreatedAt   time.Time         `json:"created_at"`
}
