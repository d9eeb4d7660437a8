package api

import (
	"encoding/json"
	"fmt"
	"io"

	ai "github.com/spetersoncode/maildraft"
)

// DefaultUserID is used when a request names no user.
const DefaultUserID = "default"

// Accepted range of length_preference, in words.
const (
	MinLengthPreference = 50
	MaxLengthPreference = 1500
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt           string  `json:"prompt"`
	UserID           string  `json:"user_id"`
	Tone             string  `json:"tone"`
	Recipient        *string `json:"recipient,omitempty"`
	RecipientEmail   *string `json:"recipient_email,omitempty"`
	LengthPreference *int    `json:"length_preference,omitempty"`
	SaveToHistory    bool    `json:"save_to_history"`
	UseStub          bool    `json:"use_stub"`
	ResetContext     bool    `json:"reset_context"`
}

// NewGenerateRequest returns a request carrying the wire defaults: the
// default user and saving to history.
func NewGenerateRequest() GenerateRequest {
	return GenerateRequest{UserID: DefaultUserID, SaveToHistory: true}
}

// DecodeGenerateRequest reads a request, filling absent fields with the
// wire defaults.
func DecodeGenerateRequest(r io.Reader) (GenerateRequest, error) {
	req := NewGenerateRequest()
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, &ai.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return req, nil
}

// DraftRequest converts the wire request to a pipeline request.
func (r GenerateRequest) DraftRequest() (ai.DraftRequest, error) {
	length, err := lengthPreference(r.LengthPreference)
	if err != nil {
		return ai.DraftRequest{}, err
	}
	userID := r.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	return ai.DraftRequest{
		Prompt:         r.Prompt,
		UserID:         userID,
		Tone:           ai.Tone(r.Tone),
		TargetLength:   length,
		Recipient:      deref(r.Recipient),
		RecipientEmail: deref(r.RecipientEmail),
		ResetContext:   r.ResetContext,
		SaveToHistory:  r.SaveToHistory,
		UseStub:        r.UseStub,
	}, nil
}

// GenerateResponse is the body returned by POST /api/generate.
type GenerateResponse struct {
	Draft       string            `json:"draft"`
	WordCount   int               `json:"word_count"`
	Tone        string            `json:"tone"`
	Intent      string            `json:"intent"`
	Metadata    map[string]any    `json:"metadata"`
	ReviewNotes map[string]string `json:"review_notes"`
	Metrics     ai.MetricsSummary `json:"metrics"`
	ContextMode string            `json:"context_mode"`
	Saved       bool              `json:"saved"`
}

// NewGenerateResponse converts a pipeline result to its wire form.
func NewGenerateResponse(r *ai.DraftResult) *GenerateResponse {
	md := r.Metadata
	if md == nil {
		md = map[string]any{}
	}
	notes := r.ReviewNotes
	if notes == nil {
		notes = map[string]string{}
	}
	return &GenerateResponse{
		Draft:       r.Draft,
		WordCount:   r.WordCount,
		Tone:        string(r.Tone),
		Intent:      string(r.Intent),
		Metadata:    md,
		ReviewNotes: notes,
		Metrics:     r.Metrics,
		ContextMode: string(r.ContextMode),
		Saved:       r.Saved,
	}
}

// RegenerateRequest is the body of POST /api/regenerate.
type RegenerateRequest struct {
	OriginalDraft    string  `json:"original_draft"`
	EditedDraft      string  `json:"edited_draft"`
	Tone             string  `json:"tone"`
	Intent           string  `json:"intent"`
	Recipient        *string `json:"recipient,omitempty"`
	LengthPreference *int    `json:"length_preference,omitempty"`
	UserID           string  `json:"user_id"`
}

// DecodeRegenerateRequest reads a regeneration request.
func DecodeRegenerateRequest(r io.Reader) (RegenerateRequest, error) {
	req := RegenerateRequest{UserID: DefaultUserID}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, &ai.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return req, nil
}

// RegenerationRequest converts the wire request to a router request.
func (r RegenerateRequest) RegenerationRequest() (ai.RegenerationRequest, error) {
	length, err := lengthPreference(r.LengthPreference)
	if err != nil {
		return ai.RegenerationRequest{}, err
	}
	userID := r.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	return ai.RegenerationRequest{
		OriginalDraft: r.OriginalDraft,
		EditedDraft:   r.EditedDraft,
		Tone:          ai.Tone(r.Tone),
		Intent:        ai.NormalizeIntent(r.Intent),
		Recipient:     deref(r.Recipient),
		TargetLength:  length,
		UserID:        userID,
	}, nil
}

// RegenerateResponse is the body returned by POST /api/regenerate.
type RegenerateResponse struct {
	FinalDraft   string  `json:"final_draft"`
	WorkflowType string  `json:"workflow_type"`
	DiffRatio    float64 `json:"diff_ratio"`
}

// NewRegenerateResponse converts a router result to its wire form.
func NewRegenerateResponse(r *ai.RegenerationResult) *RegenerateResponse {
	return &RegenerateResponse{
		FinalDraft:   r.FinalDraft,
		WorkflowType: string(r.WorkflowType),
		DiffRatio:    r.DiffRatio,
	}
}

// ErrorResponse is returned with every non-2xx status. Draft carries the
// templated fallback when the model service failed.
type ErrorResponse struct {
	Error    string         `json:"error"`
	Draft    string         `json:"draft,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HistoryResponse is returned by GET /api/history.
type HistoryResponse struct {
	UserID  string            `json:"user_id"`
	Entries []ai.HistoryEntry `json:"entries"`
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Draft string `json:"draft"`
}

// RenderResponse is returned by POST /api/render.
type RenderResponse struct {
	HTML string `json:"html"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	AppName string `json:"app_name"`
	Version string `json:"version"`
}

func lengthPreference(p *int) (int, error) {
	if p == nil {
		return 0, nil
	}
	if *p < MinLengthPreference || *p > MaxLengthPreference {
		return 0, &ai.ValidationError{Reason: fmt.Sprintf(
			"length_preference must be between %d and %d words", MinLengthPreference, MaxLengthPreference)}
	}
	return *p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
