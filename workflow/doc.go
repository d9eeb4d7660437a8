// Package workflow drafts emails through a fixed sequence of stages.
//
// A run threads a [State] value through seven stages: [Parse],
// [DetectIntent], [WriteDraft], [StyleTone], [Personalize], [Review] and
// [Refine]. Each stage may call the language model once and returns an
// updated copy of the state. Metadata written by a stage is merged by the
// [Orchestrator] on the stage's behalf, so a stage can neither remove nor
// overwrite keys owned by another.
//
// # Running the pipeline
//
//	orch := workflow.New(llm,
//	    workflow.WithHistory(history),
//	    workflow.WithProfiles(profiles),
//	)
//	res, err := orch.Run(ctx, maildraft.DraftRequest{
//	    Prompt: "Follow up with Sarah about the Q3 report deadline",
//	    Tone:   maildraft.ToneFormal,
//	})
//
// Run fails only with a *maildraft.ValidationError, when the request names
// no recipient, subject or body, or a *maildraft.ServiceError, when no
// draft could be written. Every other stage failure is recorded in the
// result's review notes and the run continues with the last good draft.
// A run whose deadline expires after a draft exists returns that draft
// with metadata timed_out set.
//
// # Streaming
//
// RunStream returns a channel of [event.Event] values describing stage
// progress. The final result arrives in the ResultReady event.
//
// # Regeneration
//
// A [Router] takes a user's edited draft back through the pipeline.
// [DiffRatio] below the threshold polishes the edit with StyleTone and
// Refine only; otherwise the edit seeds a new draft from WriteDraft on.
package workflow
