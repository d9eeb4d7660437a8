package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/maildraft/event"
)

// Custom event names.
const (
	CustomStageSkipped  = "maildraft.stage_skipped"
	CustomRouteSelected = "maildraft.route_selected"
)

// Mapper converts pipeline events to AG-UI events.
//
// Create a new Mapper for each run using NewMapper. The Mapper is not
// safe for concurrent use.
type Mapper struct {
	threadID string
	runID    string
	depth    int
}

// NewMapper creates a new Mapper for a single run. Empty ids are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// MapEvent converts one pipeline event to the AG-UI event that mirrors it.
// Returns nil for events with no single AG-UI equivalent.
func (m *Mapper) MapEvent(e event.Event) events.Event {
	switch e.Type {
	case event.RunStart:
		return m.RunStarted()
	case event.RunEnd:
		return m.RunFinished()
	case event.RunError:
		return m.RunError(e.Error)

	case event.StageStart:
		return events.NewStepStartedEvent(e.Stage)
	case event.StageEnd, event.StageFailed:
		return events.NewStepFinishedEvent(e.Stage)
	case event.StageSkipped:
		return events.NewCustomEvent(CustomStageSkipped, events.WithValue(map[string]any{
			"stage": e.Stage,
		}))

	case event.RouteSelected:
		return events.NewCustomEvent(CustomRouteSelected, events.WithValue(map[string]any{
			"workflow_type": e.Route,
			"diff_ratio":    e.DiffRatio,
		}))

	case event.ResultReady:
		switch {
		case e.Regeneration != nil:
			return events.NewStateSnapshotEvent(e.Regeneration)
		case e.Result != nil:
			return events.NewStateSnapshotEvent(e.Result)
		}
		return nil

	default:
		return nil
	}
}

// Map converts one pipeline event to zero or more AG-UI events. A ready
// result is followed by a complete assistant text message carrying the
// draft.
func (m *Mapper) Map(e event.Event) []events.Event {
	ev := m.MapEvent(e)
	if ev == nil {
		return nil
	}
	out := []events.Event{ev}
	if e.Type == event.ResultReady && e.Draft != "" {
		id := events.GenerateMessageID()
		out = append(out,
			events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
			events.NewTextMessageContentEvent(id, e.Draft),
			events.NewTextMessageEndEvent(id),
		)
	}
	return out
}

// MapStream maps a pipeline event stream until it closes. Only the
// outermost run's lifecycle events are forwarded, so a run started inside
// another surfaces as a single AG-UI run.
func (m *Mapper) MapStream(in <-chan event.Event) <-chan events.Event {
	out := make(chan events.Event, 100)
	go func() {
		defer close(out)
		for e := range in {
			switch e.Type {
			case event.RunStart:
				m.depth++
				if m.depth > 1 {
					continue
				}
			case event.RunEnd:
				m.depth--
				if m.depth > 0 {
					continue
				}
			}
			for _, ev := range m.Map(e) {
				out <- ev
			}
		}
	}()
	return out
}
