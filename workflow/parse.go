package workflow

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

const maxKeyPoints = 5

var (
	recipientPattern = regexp.MustCompile(`\b(?i:with|to|for|thank|thanks|dear|email|ask|tell|remind|invite|congratulate)\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+)?)`)
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	subjectPattern   = regexp.MustCompile(`(?i)\b(?:about|regarding|re:|concerning)\s+([^.!?\n]+)`)
)

// Words the recipient pattern picks up that are not names.
var notNames = map[string]bool{
	"i": true, "me": true, "my": true, "the": true, "a": true, "an": true,
	"our": true, "my team": true, "team": true, "everyone": true, "all": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

const parseSystem = `You are an expert at understanding email composition requests.
Extract the recipient, recipient email, subject, purpose and key points from the request.
Respond with a single JSON object with the fields recipient, recipient_email, subject, purpose and key_points (an array of strings).
Leave a field empty when the request does not say. Do not invent names.`

// Parse extracts structured fields from the request. Extraction is local
// first so an empty request is rejected before any model call; a single
// model call then fills fields the heuristics left empty.
type Parse struct{}

func (Parse) Name() string { return StageParse }

func (p Parse) Transform(ctx context.Context, llm ai.Generator, s State) (State, error) {
	parsed := extract(s.Request)
	if parsed.Empty() {
		return s, &ai.ValidationError{Reason: "could not identify a recipient, subject or body context"}
	}

	heuristic, _ := json.Marshal(parsed)
	text, err := generate(ctx, llm, ai.GenerateRequest{
		Task:        StageParse,
		System:      parseSystem,
		Prompt:      "User request:\n" + s.Request.Prompt,
		Input:       string(heuristic),
		Temperature: temperature(0),
	})

	source := "llm"
	if err == nil {
		var enriched ParsedInput
		if jerr := decodeJSONObject(text, &enriched); jerr != nil {
			err = &StageError{Stage: StageParse, Err: jerr}
		} else {
			parsed = parsed.Fill(enriched)
		}
	}
	if err != nil {
		source = "heuristic"
		s.Notes = s.Notes.With("parse_degraded", err.Error())
	}

	s.Parsed = s.Parsed.Fill(parsed)
	s.Metadata = s.Metadata.Set(StageParse, "parse_source", source)
	return s, nil
}

// extract runs the local extraction rules over a request.
func extract(req ai.DraftRequest) ParsedInput {
	prompt := strings.TrimSpace(req.Prompt)
	out := ParsedInput{
		Recipient:      strings.TrimSpace(req.Recipient),
		RecipientEmail: strings.TrimSpace(req.RecipientEmail),
		Subject:        strings.TrimSpace(req.Subject),
		BodyContext:    prompt,
	}
	if out.Recipient == "" {
		out.Recipient = recipientFrom(prompt)
	}
	if out.RecipientEmail == "" {
		out.RecipientEmail = emailPattern.FindString(prompt)
	}
	if out.Subject == "" {
		if m := subjectPattern.FindStringSubmatch(prompt); m != nil {
			out.Subject = truncateRunes(strings.TrimSpace(m[1]), 80)
		}
	}

	sents := sentences(prompt)
	if len(sents) > 0 {
		out.Purpose = sents[0]
	}
	if len(sents) > maxKeyPoints {
		sents = sents[:maxKeyPoints]
	}
	out.KeyPoints = sents
	return out
}

func recipientFrom(prompt string) string {
	for _, m := range recipientPattern.FindAllStringSubmatch(prompt, -1) {
		name := strings.TrimSpace(m[1])
		if notNames[strings.ToLower(name)] {
			continue
		}
		// "Sarah About" should stay "Sarah".
		if first, rest, ok := strings.Cut(name, " "); ok && notNames[strings.ToLower(rest)] {
			name = first
		}
		return name
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

// decodeJSONObject decodes the outermost JSON object in text, tolerating
// code fences and prose around it.
func decodeJSONObject(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
