package workflow

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

// Keyword cues per intent, checked in order. The first label with a
// matching cue wins.
var intentCues = []struct {
	intent ai.Intent
	cues   []string
}{
	{ai.IntentApology, []string{"apolog", "sorry", "my mistake", "regret"}},
	{ai.IntentThankYou, []string{"thank", "grateful", "appreciate"}},
	{ai.IntentFollowUp, []string{"follow up", "follow-up", "following up", "checking in", "circle back", "reminder", "remind"}},
	{ai.IntentComplaint, []string{"complain", "complaint", "unacceptable", "disappointed", "refund", "not working"}},
	{ai.IntentMeetingRequest, []string{"meeting", "meet", "schedule", "call", "calendar", "catch up"}},
	{ai.IntentIntroduction, []string{"introduce", "introduction", "introducing"}},
	{ai.IntentNetworking, []string{"network", "connect", "coffee chat", "linkedin"}},
	{ai.IntentStatusUpdate, []string{"status", "update", "progress", "report on"}},
	{ai.IntentInformationRequest, []string{"ask", "question", "information", "details", "clarif", "could you", "request"}},
	{ai.IntentOutreach, []string{"reach out", "reaching out", "pitch", "proposal", "partnership", "opportunity", "collaborat"}},
}

const intentSystem = `You are an expert at classifying email intents.
Classify the email into exactly one of these categories: %s.
Respond with only the category name. Use "unknown" when nothing fits.`

// DetectIntent labels the request with a coarse intent. It never fails:
// when the model is unavailable or answers outside the label set, the
// keyword heuristic decides.
type DetectIntent struct{}

func (DetectIntent) Name() string { return StageDetectIntent }

func (DetectIntent) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	guess := guessIntent(s.Parsed, s.Request.Prompt)

	labels := make([]string, 0, len(ai.Intents))
	for _, in := range ai.Intents {
		labels = append(labels, string(in))
	}
	text, err := generate(ctx, llm, ai.GenerateRequest{
		Task:   StageDetectIntent,
		System: fmt.Sprintf(intentSystem, strings.Join(labels, ", ")),
		Prompt: "Email purpose: " + s.Parsed.Purpose +
			"\nKey points: " + strings.Join(s.Parsed.KeyPoints, "; ") +
			"\nContext: " + s.Parsed.BodyContext,
		Input:           string(guess),
		Temperature:     temperature(0),
		MaxOutputTokens: 16,
	})

	intent, source := guess, "heuristic"
	switch {
	case err != nil:
		s.Notes = s.Notes.With("detect_intent_degraded", err.Error())
	case ai.NormalizeIntent(text) != ai.IntentUnknown || guess == ai.IntentUnknown:
		intent, source = ai.NormalizeIntent(text), "llm"
	}

	s.Intent = intent
	s.Metadata = s.Metadata.Set(StageDetectIntent, "intent_source", source)
	return s, nil
}

// guessIntent classifies by keyword cues.
func guessIntent(p ParsedInput, prompt string) ai.Intent {
	text := strings.ToLower(prompt + " " + p.Purpose + " " + p.Subject)
	for _, c := range intentCues {
		for _, cue := range c.cues {
			if strings.Contains(text, cue) {
				return c.intent
			}
		}
	}
	return ai.IntentUnknown
}
