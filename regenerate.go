package maildraft

// WorkflowType names the path a regeneration took.
type WorkflowType string

const (
	// WorkflowLightweight polishes the edited text with tone and refine only.
	WorkflowLightweight WorkflowType = "lightweight"

	// WorkflowFull re-runs the pipeline from draft writing onward.
	WorkflowFull WorkflowType = "full"
)

// RegenerationRequest carries a user's hand-edited draft back for polishing.
type RegenerationRequest struct {
	OriginalDraft string
	EditedDraft   string
	Tone          Tone
	Intent        Intent
	Recipient     string
	TargetLength  int
	UserID        string
}

// RegenerationResult is the outcome of a regeneration.
type RegenerationResult struct {
	FinalDraft   string         `json:"final_draft"`
	WorkflowType WorkflowType   `json:"workflow_type"`
	DiffRatio    float64        `json:"diff_ratio"`
	Metrics      MetricsSummary `json:"metrics"`
}
