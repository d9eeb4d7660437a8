package workflow

import (
	"context"
	"fmt"

	ai "github.com/spetersoncode/maildraft"
)

// DefaultRefineMinRatio is the shortest refined draft, relative to its
// input in runes, that Refine accepts.
const DefaultRefineMinRatio = 0.30

// Refine polishes the draft and removes duplicated closings, falling back
// to local cleanup when the model call fails. Output shorter than MinRatio
// of the input is discarded in favour of the input.
type Refine struct {
	MinRatio float64
}

func (Refine) Name() string { return StageRefine }

func (r Refine) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	in := s.Draft()
	text, err := generate(ctx, llm, ai.GenerateRequest{
		Task:        StageRefine,
		System:      refineSystem,
		Prompt:      "Email draft to refine:\n" + in,
		Input:       in,
		Temperature: temperature(0.2),
	})
	polished := err == nil
	if err != nil {
		s.Notes = s.Notes.With("refine_degraded", err.Error())
		text = in
	}

	out := localCleanup(text, s.Profile)
	if floor := r.minRatio() * float64(runeLen(in)); float64(runeLen(out)) < floor {
		s.RefinedDraft = in
		s.Notes = s.Notes.With("refine_reverted",
			fmt.Sprintf("refined draft had %d of %d characters", runeLen(out), runeLen(in)))
		s.Metadata = s.Metadata.
			Set(StageRefine, "refined", false).
			Set(StageRefine, "refine_reverted", true)
		return s, nil
	}

	s.RefinedDraft = out
	s.Metadata = s.Metadata.Set(StageRefine, "refined", polished)
	return s, nil
}

func (r Refine) minRatio() float64 {
	if r.MinRatio <= 0 {
		return DefaultRefineMinRatio
	}
	return r.MinRatio
}
