package agui

import (
	"encoding/json"
	"errors"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/maildraft"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
// The prompt is the last user message; drafting options travel in State.
type RunAgentInput struct {
	ThreadID       string           `json:"thread_id"`
	RunID          string           `json:"run_id"`
	Messages       []events.Message `json:"messages"`
	State          any              `json:"state,omitempty"`
	ForwardedProps any              `json:"forwarded_props,omitempty"`
}

// DraftOptions are the drafting options a frontend sends as state.
type DraftOptions struct {
	UserID           string `json:"user_id"`
	Tone             string `json:"tone"`
	Recipient        string `json:"recipient"`
	RecipientEmail   string `json:"recipient_email"`
	Subject          string `json:"subject"`
	LengthPreference int    `json:"length_preference"`
	SaveToHistory    bool   `json:"save_to_history"`
	UseStub          bool   `json:"use_stub"`
	ResetContext     bool   `json:"reset_context"`
}

// PreparedInput contains validated input ready for a pipeline run.
type PreparedInput struct {
	ThreadID string
	RunID    string
	Request  ai.DraftRequest
}

// ErrNoMessages is returned when the input carries no user message.
var ErrNoMessages = errors.New("no user message provided")

// Prepare validates the input and converts it to a draft request.
func (r *RunAgentInput) Prepare() (*PreparedInput, error) {
	prompt := LastUserText(r.Messages)
	if prompt == "" {
		return nil, ErrNoMessages
	}

	opts, err := DecodeState[DraftOptions](r.State)
	if err != nil {
		return nil, err
	}
	tone, err := ai.ParseTone(opts.Tone)
	if err != nil {
		return nil, err
	}

	return &PreparedInput{
		ThreadID: r.ThreadID,
		RunID:    r.RunID,
		Request: ai.DraftRequest{
			Prompt:         prompt,
			UserID:         opts.UserID,
			Tone:           tone,
			TargetLength:   opts.LengthPreference,
			Recipient:      opts.Recipient,
			RecipientEmail: opts.RecipientEmail,
			Subject:        opts.Subject,
			ResetContext:   opts.ResetContext,
			SaveToHistory:  opts.SaveToHistory,
			UseStub:        opts.UseStub,
		},
	}, nil
}

// DecodeState decodes raw frontend state into a typed struct.
// Returns the zero value of T if state is nil.
func DecodeState[T any](state any) (T, error) {
	var result T
	if state == nil {
		return result, nil
	}

	// Re-marshal and unmarshal to get proper typing
	data, err := json.Marshal(state)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}
