package maildraft

import (
	"maps"
	"strings"
	"time"
)

// Profile describes the sender of a user's drafts.
type Profile struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name,omitempty"`
	Title       string            `json:"title,omitempty"`
	Company     string            `json:"company,omitempty"`
	Signature   string            `json:"signature,omitempty"`
	StyleNotes  string            `json:"style_notes,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at,omitzero"`
}

// ProfileUpdate changes the non-nil fields of a profile and merges
// Preferences key by key.
type ProfileUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Title       *string           `json:"title,omitempty"`
	Company     *string           `json:"company,omitempty"`
	Signature   *string           `json:"signature,omitempty"`
	StyleNotes  *string           `json:"style_notes,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// Apply returns p with u applied. p itself is left untouched.
func (p Profile) Apply(u ProfileUpdate) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Company != nil {
		p.Company = *u.Company
	}
	if u.Signature != nil {
		p.Signature = *u.Signature
	}
	if u.StyleNotes != nil {
		p.StyleNotes = *u.StyleNotes
	}
	if len(u.Preferences) > 0 {
		prefs := maps.Clone(p.Preferences)
		if prefs == nil {
			prefs = make(map[string]string, len(u.Preferences))
		}
		maps.Copy(prefs, u.Preferences)
		p.Preferences = prefs
	}
	p.UpdatedAt = time.Now().UTC()
	return p
}

// Personal reports whether the profile carries anything to weave into a
// draft beyond the default closing.
func (p Profile) Personal() bool {
	return p.Name != "" || p.Title != "" || p.Company != "" || p.StyleNotes != ""
}

// SignatureBlock returns the closing block drafts should end with.
func (p Profile) SignatureBlock() string {
	if sig := strings.TrimSpace(p.Signature); sig != "" {
		return sig
	}
	lines := []string{"Best regards,"}
	if p.Name != "" {
		lines = append(lines, p.Name)
	}
	switch {
	case p.Title != "" && p.Company != "":
		lines = append(lines, p.Title+", "+p.Company)
	case p.Title != "":
		lines = append(lines, p.Title)
	case p.Company != "":
		lines = append(lines, p.Company)
	}
	return strings.Join(lines, "\n")
}
