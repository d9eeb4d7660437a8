package workflow

import (
	"context"
	"fmt"
	"math"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

const (
	maxLengthDeviation = 0.5
	minWords           = 30
	maxExclamations    = 3
	maxQuestions       = 5
)

// Words whose presence suggests a register other than the formal ones.
var casualMarkers = []string{"hey", "gonna", "wanna", "lol", "btw", "!!", "awesome", "cool"}

// Review annotates the draft with advisory notes. It runs locally and
// never changes the draft.
type Review struct{}

func (Review) Name() string { return StageReview }

func (Review) Transform(_ context.Context, _ ai.Generator, s State) (State, error) {
	notes := reviewDraft(s.Draft(), s)
	for k, v := range notes {
		s.Notes = s.Notes.With(k, v)
	}
	s.Metadata = s.Metadata.Set(StageReview, "review_issues", len(notes))
	return s, nil
}

func reviewDraft(draft string, s State) Notes {
	notes := Notes{}
	words := ai.WordCount(draft)

	if r := s.Parsed.Recipient; r == "" {
		notes["missing_recipient"] = "no recipient was identified"
	} else if first, _, _ := strings.Cut(r, " "); !containsFold(draft, first) {
		notes["missing_recipient"] = fmt.Sprintf("draft does not address %s", r)
	}
	if s.Parsed.Subject == "" {
		notes["missing_subject"] = "no subject was identified"
	}
	if formalTone(s.Tone) {
		for _, m := range casualMarkers {
			if containsFold(draft, m) {
				notes["tone_mismatch"] = fmt.Sprintf("%q reads casual for a %s tone", m, s.Tone)
				break
			}
		}
	}
	if s.TargetLength > 0 {
		dev := math.Abs(float64(words-s.TargetLength)) / float64(s.TargetLength)
		if dev > maxLengthDeviation {
			notes["length_deviation"] = fmt.Sprintf("%d words against a target of %d", words, s.TargetLength)
		}
	}
	if words < minWords {
		notes["too_short"] = fmt.Sprintf("only %d words", words)
	}
	if !hasGreeting(draft) {
		notes["missing_greeting"] = "draft does not open with a greeting"
	}
	if !hasClosing(draft) {
		notes["missing_closing"] = "draft has no closing line"
	}
	if n := strings.Count(draft, "!"); n > maxExclamations {
		notes["excessive_exclamations"] = fmt.Sprintf("%d exclamation marks", n)
	}
	if n := strings.Count(draft, "?"); n > maxQuestions {
		notes["excessive_questions"] = fmt.Sprintf("%d question marks", n)
	}
	return notes
}

func formalTone(t ai.Tone) bool {
	return t == ai.ToneFormal || t == ai.ToneProfessional
}
