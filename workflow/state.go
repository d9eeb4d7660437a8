package workflow

import (
	"maps"
	"strings"

	ai "github.com/spetersoncode/maildraft"
)

// ParsedInput holds the structured fields extracted from a request.
type ParsedInput struct {
	Recipient      string   `json:"recipient"`
	RecipientEmail string   `json:"recipient_email,omitempty"`
	Subject        string   `json:"subject"`
	BodyContext    string   `json:"body_context,omitempty"`
	Purpose        string   `json:"purpose"`
	KeyPoints      []string `json:"key_points"`
}

// Empty reports whether recipient, subject and body context are all blank.
func (p ParsedInput) Empty() bool {
	return strings.TrimSpace(p.Recipient) == "" &&
		strings.TrimSpace(p.Subject) == "" &&
		strings.TrimSpace(p.BodyContext) == ""
}

// Fill returns p with its empty fields taken from other.
func (p ParsedInput) Fill(other ParsedInput) ParsedInput {
	if p.Recipient == "" {
		p.Recipient = strings.TrimSpace(other.Recipient)
	}
	if p.RecipientEmail == "" {
		p.RecipientEmail = strings.TrimSpace(other.RecipientEmail)
	}
	if p.Subject == "" {
		p.Subject = strings.TrimSpace(other.Subject)
	}
	if p.BodyContext == "" {
		p.BodyContext = strings.TrimSpace(other.BodyContext)
	}
	if p.Purpose == "" {
		p.Purpose = strings.TrimSpace(other.Purpose)
	}
	if len(p.KeyPoints) == 0 && len(other.KeyPoints) > 0 {
		p.KeyPoints = append([]string(nil), other.KeyPoints...)
	}
	return p
}

// State is the value threaded through the stages of one run. Stages
// receive a copy and return an updated copy; they never share it with
// other runs.
type State struct {
	Request ai.DraftRequest
	Tone    ai.Tone

	Parsed ParsedInput
	Intent ai.Intent

	// Seed is user-supplied text that WriteDraft reworks instead of
	// drafting from scratch. Set by full regenerations.
	Seed string

	// TargetLength is the effective word-count target. Zero means automatic.
	TargetLength int

	RawDraft          string
	StyledDraft       string
	PersonalizedDraft string
	RefinedDraft      string

	// Notes holds advisory review notes and degraded-stage notes.
	Notes Notes

	ContextMode ai.ContextMode
	History     []ai.HistoryEntry
	Profile     ai.Profile

	Metadata Metadata
}

// Draft returns the most advanced draft produced so far.
func (s State) Draft() string {
	switch {
	case s.RefinedDraft != "":
		return s.RefinedDraft
	case s.PersonalizedDraft != "":
		return s.PersonalizedDraft
	case s.StyledDraft != "":
		return s.StyledDraft
	default:
		return s.RawDraft
	}
}

// Notes maps an issue key to its detail.
type Notes map[string]string

// With returns a copy of n with key set to detail.
func (n Notes) With(key, detail string) Notes {
	out := make(Notes, len(n)+1)
	maps.Copy(out, n)
	out[key] = detail
	return out
}

// merge returns the union of n and next; next wins on conflicts.
func (n Notes) merge(next Notes) Notes {
	out := make(Notes, len(n)+len(next))
	maps.Copy(out, n)
	maps.Copy(out, next)
	return out
}

type metaEntry struct {
	owner string
	value any
}

// Metadata is an immutable snapshot of run metadata. Every key is owned by
// the first writer; only the owner may overwrite it and no key is ever
// removed. The zero value is an empty snapshot.
type Metadata struct {
	entries map[string]metaEntry
}

// Set returns a snapshot with key set to value on behalf of owner. A key
// owned by someone else is left unchanged.
func (m Metadata) Set(owner, key string, value any) Metadata {
	if e, ok := m.entries[key]; ok && e.owner != owner {
		return m
	}
	out := make(map[string]metaEntry, len(m.entries)+1)
	maps.Copy(out, m.entries)
	out[key] = metaEntry{owner: owner, value: value}
	return Metadata{entries: out}
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	e, ok := m.entries[key]
	return e.value, ok
}

// Owner returns who owns key, or "" when the key is absent.
func (m Metadata) Owner(key string) string {
	return m.entries[key].owner
}

// Len returns the number of keys.
func (m Metadata) Len() int { return len(m.entries) }

// Map returns the snapshot as a plain map.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m.entries))
	for k, e := range m.entries {
		out[k] = e.value
	}
	return out
}

// Merge folds the keys a stage wrote into m. Entries from next are
// accepted only when they are owned by stage and the key is free or
// already owned by stage. Keys present in m survive even when next lacks
// them.
func (m Metadata) Merge(stage string, next Metadata) Metadata {
	out := m
	for k, e := range next.entries {
		if e.owner != stage {
			continue
		}
		out = out.Set(stage, k, e.value)
	}
	return out
}
