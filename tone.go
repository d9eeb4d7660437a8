package maildraft

import (
	"fmt"
	"strings"
)

// Tone is the register a draft should be written in.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneAssertive    Tone = "assertive"
	ToneEmpathetic   Tone = "empathetic"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneEnthusiastic Tone = "enthusiastic"
)

// DefaultTone applies when a request names no tone.
const DefaultTone = ToneFormal

// Tones lists every supported tone.
var Tones = []Tone{
	ToneFormal, ToneCasual, ToneAssertive, ToneEmpathetic,
	ToneProfessional, ToneFriendly, ToneEnthusiastic,
}

// ParseTone resolves a tone name, case-insensitively. An empty name yields
// DefaultTone.
func ParseTone(s string) (Tone, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTone, nil
	}
	for _, t := range Tones {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

// Guidance returns the writing instruction handed to the model for t.
func (t Tone) Guidance() string {
	switch t {
	case ToneFormal:
		return "Use formal business language, complete sentences and no contractions or slang."
	case ToneCasual:
		return "Use relaxed, conversational language. Contractions are welcome."
	case ToneAssertive:
		return "Be direct and confident. State requests clearly and avoid hedging words."
	case ToneEmpathetic:
		return "Acknowledge the reader's situation and feelings with warmth and understanding."
	case ToneProfessional:
		return "Be polished, courteous and to the point."
	case ToneFriendly:
		return "Be warm and approachable while staying clear."
	case ToneEnthusiastic:
		return "Convey genuine energy and excitement without exaggeration."
	default:
		return "Keep the language clear and courteous."
	}
}
