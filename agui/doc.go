// Package agui connects the drafting pipeline to the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an event-based protocol for streaming agent
// progress to user-facing applications. This package converts pipeline
// events into AG-UI events and AG-UI run requests into draft requests.
//
// # Usage
//
//	var input agui.RunAgentInput
//	_ = json.NewDecoder(r.Body).Decode(&input)
//	prepared, err := input.Prepare()
//
//	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
//	for ev := range mapper.MapStream(orch.RunStream(ctx, prepared.Request)) {
//	    writeSSE(w, ev)
//	}
//
// # Event Mapping
//
//   - run_start, run_end, run_error → RUN_STARTED, RUN_FINISHED, RUN_ERROR
//   - stage_start → STEP_STARTED; stage_end and stage_failed → STEP_FINISHED
//   - stage_skipped, route_selected → CUSTOM
//   - result_ready → STATE_SNAPSHOT followed by TEXT_MESSAGE_START,
//     TEXT_MESSAGE_CONTENT and TEXT_MESSAGE_END carrying the draft
//
// # Thread Safety
//
// The Mapper is NOT safe for concurrent use. Create one per run.
package agui
