package workflow

import (
	"context"
	"fmt"

	ai "github.com/spetersoncode/maildraft"
)

// Bounds a tone rewrite must respect to be accepted.
const (
	minStyleRatio     = 0.5
	maxStyleRatio     = 2.0
	minTermsRetention = 0.8
)

// StyleTone rewrites the draft's surface language in the requested tone.
// Rewrites that change the length too much or drop key terms are
// rejected and the input is kept.
type StyleTone struct{}

func (StyleTone) Name() string { return StageStyleTone }

func (StyleTone) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	in := s.Draft()
	text, err := generate(ctx, llm, ai.GenerateRequest{
		Task:   StageStyleTone,
		System: styleSystem,
		Prompt: fmt.Sprintf("Target tone: %s\nGuidelines: %s\n\nOriginal draft:\n%s",
			s.Tone, s.Tone.Guidance(), in),
		Input:       in,
		Temperature: temperature(0.5),
	})
	if err != nil {
		return s, err
	}

	if reason := checkRewrite(in, text); reason != "" {
		s.StyledDraft = in
		s.Notes = s.Notes.With("tone_rewrite_rejected", reason)
		s.Metadata = s.Metadata.Set(StageStyleTone, "tone_adjusted", false)
		return s, nil
	}
	s.StyledDraft = text
	s.Metadata = s.Metadata.Set(StageStyleTone, "tone_adjusted", true)
	return s, nil
}

// checkRewrite returns why out is not an acceptable rewrite of in, or "".
func checkRewrite(in, out string) string {
	inLen, outLen := runeLen(in), runeLen(out)
	if inLen > 0 {
		ratio := float64(outLen) / float64(inLen)
		if ratio < minStyleRatio || ratio > maxStyleRatio {
			return fmt.Sprintf("rewrite length ratio %.2f outside [%.1f, %.1f]", ratio, minStyleRatio, maxStyleRatio)
		}
	}
	if kept := termRetention(in, out); kept < minTermsRetention {
		return fmt.Sprintf("rewrite kept %.0f%% of key terms", kept*100)
	}
	return ""
}
