package workflow

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

// Personalize weaves the sender profile into the draft and guarantees it
// ends with exactly one signature block.
type Personalize struct{}

func (Personalize) Name() string { return StagePersonalize }

func (Personalize) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	draft := s.Draft()
	personalized := false

	if s.Profile.Personal() {
		text, err := generate(ctx, llm, ai.GenerateRequest{
			Task:        StagePersonalize,
			System:      personalizeSystem,
			Prompt:      personalizePrompt(s.Profile, draft),
			Input:       draft,
			Temperature: temperature(0.4),
		})
		if err != nil {
			s.Notes = s.Notes.With("personalize_degraded", err.Error())
		} else {
			draft, personalized = text, true
		}
	}

	s.PersonalizedDraft = ensureSignature(draft, s.Profile)
	s.Metadata = s.Metadata.Set(StagePersonalize, "personalized", personalized)
	return s, nil
}

func personalizePrompt(p ai.Profile, draft string) string {
	var b strings.Builder
	b.WriteString("Sender profile:\n")
	for _, f := range []struct{ label, value string }{
		{"Name", p.Name},
		{"Title", p.Title},
		{"Company", p.Company},
		{"Signature", p.Signature},
		{"Writing style notes", p.StyleNotes},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}
	b.WriteString("\nDraft:\n")
	b.WriteString(draft)
	return b.String()
}
