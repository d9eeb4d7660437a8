package maildraft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTone(t *testing.T) {
	t.Run("known tones", func(t *testing.T) {
		for _, tone := range Tones {
			got, err := ParseTone(string(tone))
			require.NoError(t, err)
			assert.Equal(t, tone, got)
		}
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		got, err := ParseTone("  Formal ")
		require.NoError(t, err)
		assert.Equal(t, ToneFormal, got)
	})

	t.Run("empty yields default", func(t *testing.T) {
		got, err := ParseTone("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTone, got)
	})

	t.Run("unknown tone", func(t *testing.T) {
		_, err := ParseTone("sarcastic")
		assert.Error(t, err)
	})
}

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		in       string
		expected Intent
	}{
		{"follow_up", IntentFollowUp},
		{"Follow Up", IntentFollowUp},
		{"follow-up", IntentFollowUp},
		{"\"thank_you\".", IntentThankYou},
		{"intent: meeting_request", IntentMeetingRequest},
		{"unknown", IntentUnknown},
		{"", IntentUnknown},
		{"poetry", IntentUnknown},
		{"up", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIntent(tt.in))
		})
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 5, WordCount("Hi Sarah,\n\nfollowing up today."))
}

func TestNewHistoryEntry(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := DraftResult{
		RequestID:   "req-1",
		Draft:       "Hello",
		Tone:        ToneFriendly,
		Intent:      IntentOutreach,
		ContextMode: ContextFresh,
		Metadata:    map[string]any{"refined": true},
		CreatedAt:   created,
	}

	entry := NewHistoryEntry("u-1", result)

	assert.Equal(t, "req-1", entry.ID)
	assert.Equal(t, "u-1", entry.UserID)
	assert.Equal(t, "Hello", entry.Draft)
	assert.Equal(t, created, entry.Timestamp)
	assert.Equal(t, true, entry.Metadata["refined"])
	assert.Equal(t, "friendly", entry.Metadata["tone"])

	entry.Metadata["refined"] = false
	assert.Equal(t, true, result.Metadata["refined"], "snapshot must not alias the result")
}

func TestProfileApply(t *testing.T) {
	name := "Alex Doe"
	base := Profile{UserID: "u-1", Company: "Acme", Preferences: map[string]string{"a": "1"}}

	updated := base.Apply(ProfileUpdate{
		Name:        &name,
		Preferences: map[string]string{"b": "2"},
	})

	assert.Equal(t, "Alex Doe", updated.Name)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, updated.Preferences)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.Equal(t, map[string]string{"a": "1"}, base.Preferences)
}

func TestProfileSignatureBlock(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		expected string
	}{
		{"explicit signature", Profile{Signature: "Cheers,\nSam\n"}, "Cheers,\nSam"},
		{"name title company", Profile{Name: "Sam", Title: "CTO", Company: "Acme"}, "Best regards,\nSam\nCTO, Acme"},
		{"name only", Profile{Name: "Sam"}, "Best regards,\nSam"},
		{"empty profile", Profile{}, "Best regards,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.profile.SignatureBlock())
		})
	}
}
