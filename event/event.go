// Package event defines the events emitted while a pipeline run or a
// regeneration is in progress. The types are designed for 1:1 mapping with
// the AG-UI protocol.
package event

import (
	"time"

	ai "github.com/spetersoncode/maildraft"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when a pipeline run or regeneration begins.
	RunStart Type = "run_start"

	// RunEnd fires when a run completes, including degraded runs.
	RunEnd Type = "run_end"

	// RunError fires when a run surfaces an error to the caller.
	RunError Type = "run_error"
)

// Stage lifecycle events
const (
	// StageStart fires before a stage transforms the state.
	StageStart Type = "stage_start"

	// StageEnd fires after a stage succeeds.
	StageEnd Type = "stage_end"

	// StageFailed fires when a non-fatal stage fails and the run continues
	// with the prior state.
	StageFailed Type = "stage_failed"

	// StageSkipped fires for stages not run, such as those after a deadline.
	StageSkipped Type = "stage_skipped"
)

// Result events
const (
	// RouteSelected fires when the regeneration router picks a workflow.
	RouteSelected Type = "route_selected"

	// ResultReady carries the terminal result of a run.
	ResultReady Type = "result_ready"
)

// Event represents an observable occurrence during a run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// RunID correlates the events of one run.
	RunID string

	// Stage names the stage for stage events.
	Stage string

	// Draft is the most advanced draft after the stage, for StageEnd.
	Draft string

	// Route is the workflow type for RouteSelected events.
	Route ai.WorkflowType

	// DiffRatio accompanies RouteSelected events.
	DiffRatio float64

	// Result is set on ResultReady for pipeline runs.
	Result *ai.DraftResult

	// Regeneration is set on ResultReady for regenerations.
	Regeneration *ai.RegenerationResult

	// Error contains the error for RunError and StageFailed events.
	Error error

	// Message contains additional context, such as a skip reason.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit sends an event with timestamp to the channel (non-blocking).
// A nil channel discards the event.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
		// Channel full - don't block
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
