package workflow

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

// Longest history excerpt handed to the model per entry.
const historyExcerptRunes = 400

// WriteDraft produces the first draft. It is the only stage whose failure
// ends the run.
type WriteDraft struct{}

func (WriteDraft) Name() string { return StageWriteDraft }

// Fatal reports that a failed WriteDraft leaves nothing to continue from.
func (WriteDraft) Fatal() bool { return true }

func (WriteDraft) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	text, err := generate(ctx, llm, ai.GenerateRequest{
		Task:        StageWriteDraft,
		System:      writeSystem,
		Prompt:      writePrompt(s),
		Input:       FallbackDraft(s),
		Temperature: temperature(0.7),
	})
	if err != nil {
		return s, err
	}
	s.RawDraft = text
	return s, nil
}

func writePrompt(s State) string {
	var b strings.Builder
	b.WriteString(intentGuide(s.Intent))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Recipient: %s\n", orDefault(s.Parsed.Recipient, "not specified"))
	if s.Parsed.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", s.Parsed.Subject)
	}
	fmt.Fprintf(&b, "Purpose: %s\n", s.Parsed.Purpose)
	if len(s.Parsed.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points:\n- %s\n", strings.Join(s.Parsed.KeyPoints, "\n- "))
	}
	fmt.Fprintf(&b, "Tone: %s. %s\n", s.Tone, s.Tone.Guidance())
	if s.TargetLength > 0 {
		fmt.Fprintf(&b, "Target length: about %d words.\n", s.TargetLength)
	}
	if s.ContextMode == ai.ContextContextual && len(s.History) > 0 {
		b.WriteString("\nRecent emails by this sender, for background only:\n")
		for i, h := range s.History {
			fmt.Fprintf(&b, "--- %d ---\n%s\n", i+1, truncateRunes(h.Draft, historyExcerptRunes))
		}
	}
	if s.Seed != "" {
		b.WriteString("\nRework this user-edited draft, keeping its content and intent:\n")
		b.WriteString(s.Seed)
		b.WriteString("\n")
	}
	return b.String()
}

// FallbackDraft renders the templated draft used when no model output is
// available. A seed is returned as is.
func FallbackDraft(s State) string {
	if seed := strings.TrimSpace(s.Seed); seed != "" {
		return seed
	}

	var b strings.Builder
	if s.Parsed.Recipient != "" {
		fmt.Fprintf(&b, "Dear %s,\n\n", s.Parsed.Recipient)
	} else {
		b.WriteString("Hello,\n\n")
	}
	b.WriteString("I hope this email finds you well.\n\n")

	purpose := strings.TrimRight(strings.TrimSpace(s.Parsed.Purpose), ".!?")
	if purpose != "" {
		fmt.Fprintf(&b, "I wanted to %s.\n\n", lowerFirst(purpose))
	}

	var points []string
	for _, kp := range s.Parsed.KeyPoints {
		if kp = strings.TrimSpace(kp); kp != "" && !strings.EqualFold(strings.TrimRight(kp, ".!?"), purpose) {
			points = append(points, "- "+kp)
		}
	}
	if len(points) > 0 {
		b.WriteString(strings.Join(points, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("I look forward to hearing from you.\n\nBest regards,")
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
