package maildraft

import (
	"strings"
	"time"
)

// ContextMode says whether a run used prior history.
type ContextMode string

const (
	ContextFresh      ContextMode = "fresh"
	ContextContextual ContextMode = "contextual"
)

// DraftRequest is a caller's request for a new draft. It is never modified
// once submitted.
type DraftRequest struct {
	Prompt string
	UserID string
	Tone   Tone

	// TargetLength is the desired word count. Zero means automatic.
	TargetLength int

	Recipient      string
	RecipientEmail string

	// Subject is optional. When empty it is derived from the prompt.
	Subject string

	// ResetContext forces a fresh run that ignores stored history.
	ResetContext bool

	// SaveToHistory hands the result to the history store.
	SaveToHistory bool

	// UseStub answers every model call of the run locally.
	UseStub bool
}

// DraftResult is the terminal output of one pipeline run.
type DraftResult struct {
	RequestID   string            `json:"request_id"`
	UserID      string            `json:"user_id"`
	Draft       string            `json:"draft"`
	WordCount   int               `json:"word_count"`
	Tone        Tone              `json:"tone"`
	Intent      Intent            `json:"intent"`
	ContextMode ContextMode       `json:"context_mode"`
	ReviewNotes map[string]string `json:"review_notes"`
	Metadata    map[string]any    `json:"metadata"`
	Metrics     MetricsSummary    `json:"metrics"`
	Saved       bool              `json:"saved"`
	CreatedAt   time.Time         `json:"created_at"`
}

// HistoryEntry is a persisted draft. Entries are never modified.
type HistoryEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Draft     string         `json:"draft"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewHistoryEntry snapshots a result for storage. The result's request id
// becomes the entry id, which keeps repeated appends idempotent.
func NewHistoryEntry(userID string, r DraftResult) HistoryEntry {
	md := make(map[string]any, len(r.Metadata)+3)
	for k, v := range r.Metadata {
		md[k] = v
	}
	md["tone"] = string(r.Tone)
	md["intent"] = string(r.Intent)
	md["context_mode"] = string(r.ContextMode)
	ts := r.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return HistoryEntry{
		ID:        r.RequestID,
		UserID:    userID,
		Draft:     r.Draft,
		Metadata:  md,
		Timestamp: ts,
	}
}

// MetricsSummary aggregates the model calls of a run or a process.
type MetricsSummary struct {
	LLMCalls         int      `json:"llm_calls"`
	FailedCalls      int      `json:"failed_calls"`
	TotalTokens      int      `json:"total_tokens"`
	InputTokens      int      `json:"input_tokens"`
	OutputTokens     int      `json:"output_tokens"`
	AvgLatencyMS     float64  `json:"avg_latency_ms"`
	EstimatedCostUSD *float64 `json:"estimated_cost_usd,omitempty"`
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
