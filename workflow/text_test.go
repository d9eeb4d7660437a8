package workflow

import (
	"strings"
	"testing"

	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	got := sentences("Follow up with Sarah. Mention the Q3 deadline!\nAsk for an update? ")
	assert.Equal(t, []string{"Follow up with Sarah", "Mention the Q3 deadline", "Ask for an update"}, got)
	assert.Empty(t, sentences("   "))
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "follow up", lowerFirst("Follow up"))
	assert.Equal(t, "Q3 report", lowerFirst("Q3 report"))
	assert.Equal(t, "CEO update", lowerFirst("CEO update"))
	assert.Equal(t, "", lowerFirst(""))
}

func TestKeyTerms(t *testing.T) {
	terms := keyTerms("The report from Acme is due on May 5. Sarah will review it.")
	assert.ElementsMatch(t, []string{"acme", "may", "5"}, terms)
}

func TestTermRetention(t *testing.T) {
	src := "Please send the numbers to Acme by March 3."
	assert.Equal(t, 1.0, termRetention(src, "Kindly share the numbers with acme by march 3."))
	assert.InDelta(t, 1.0/3, termRetention(src, "Please send the numbers to them by March."), 0.01)
	assert.Equal(t, 1.0, termRetention("no key terms here", "anything"))
}

func TestEnsureSignature(t *testing.T) {
	profile := ai.Profile{Name: "Jane Doe", Title: "PM", Company: "Acme"}

	t.Run("appends block when no closing exists", func(t *testing.T) {
		got := ensureSignature("Dear Sarah,\n\nThe report is ready.", profile)
		assert.Equal(t, "Dear Sarah,\n\nThe report is ready.\n\nBest regards,\nJane Doe\nPM, Acme", got)
	})

	t.Run("merges into existing closing", func(t *testing.T) {
		got := ensureSignature("Dear Sarah,\n\nThe report is ready.\n\nSincerely,\n[Your Name]", profile)
		assert.Equal(t, "Dear Sarah,\n\nThe report is ready.\n\nSincerely,\nJane Doe\nPM, Acme", got)
	})

	t.Run("custom signature replaces closing", func(t *testing.T) {
		p := ai.Profile{Signature: "Cheers,\nJ."}
		got := ensureSignature("Hi Sam,\n\nSee you soon.\n\nBest,\nJane", p)
		assert.Equal(t, "Hi Sam,\n\nSee you soon.\n\nCheers,\nJ.", got)
	})

	t.Run("empty profile keeps closing only", func(t *testing.T) {
		got := ensureSignature("Hello,\n\nThanks for the help.\n\nBest regards,", ai.Profile{})
		assert.Equal(t, "Hello,\n\nThanks for the help.\n\nBest regards,", got)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := ensureSignature("Dear Sarah,\n\nThe report is ready.", profile)
		assert.Equal(t, once, ensureSignature(once, profile))
	})

	t.Run("closing phrase in the body is kept", func(t *testing.T) {
		draft := "Dear Sarah,\n\nThank you!\n\nThe Q3 report is due on Friday.\n\nBest regards,\n[Your Name]"
		got := ensureSignature(draft, profile)
		assert.Equal(t, "Dear Sarah,\n\nThank you!\n\nThe Q3 report is due on Friday.\n\nBest regards,\nJane Doe\nPM, Acme", got)
		assert.Equal(t, 1, strings.Count(got, "Best regards,"))
	})

	t.Run("trailing closing phrase gains identity", func(t *testing.T) {
		got := ensureSignature("Dear Sarah,\n\nThe Q3 report is due on Friday.\n\nThank you!", profile)
		assert.Equal(t, "Dear Sarah,\n\nThe Q3 report is due on Friday.\n\nThank you!\nJane Doe\nPM, Acme", got)
	})

	t.Run("custom signature already present", func(t *testing.T) {
		for _, sig := range []string{"Warmly,\nJane Doe", "Jane Doe\nHead of Ops"} {
			p := ai.Profile{Name: "Jane Doe", Signature: sig}
			draft := "Hi Sam,\n\nSee you soon.\n\n" + sig
			got := ensureSignature(draft, p)
			assert.Equal(t, draft, got, sig)
			assert.Equal(t, 1, strings.Count(got, "Jane Doe"), sig)
		}
	})

	t.Run("custom signature below a closing phrase", func(t *testing.T) {
		p := ai.Profile{Name: "Jane Doe", Signature: "Jane Doe\nHead of Ops"}
		got := ensureSignature("Hi Sam,\n\nSee you soon.\n\nBest regards,\nJane Doe\nHead of Ops", p)
		assert.Equal(t, "Hi Sam,\n\nSee you soon.\n\nBest regards,\nJane Doe\nHead of Ops", got)
	})
}

func TestLocalCleanup(t *testing.T) {
	in := "Dear Sarah,\n\n\n\nThe report is late.\nThe report is late.\n\nBest regards,\nJane Doe\n\nBest regards,\nJane Doe\n"
	got := localCleanup(in, ai.Profile{})
	assert.Equal(t, "Dear Sarah,\n\nThe report is late.\n\nBest regards,\nJane Doe", got)
	assert.Equal(t, 1, strings.Count(got, "Best regards,"))

	t.Run("duplicated custom signature", func(t *testing.T) {
		p := ai.Profile{Name: "Jane Doe", Signature: "Jane Doe\nHead of Ops"}
		got := localCleanup("Hi Sam,\n\nSee you soon.\n\nJane Doe\nHead of Ops\n\nJane Doe\nHead of Ops", p)
		assert.Equal(t, "Hi Sam,\n\nSee you soon.\n\nJane Doe\nHead of Ops", got)
	})

	t.Run("closing phrase in the body is kept", func(t *testing.T) {
		in := "Dear Sarah,\n\nThank you!\n\nThe report is late.\n\nBest regards,\nJane"
		assert.Equal(t, in, localCleanup(in, ai.Profile{}))
	})
}

func TestHasGreetingAndClosing(t *testing.T) {
	assert.True(t, hasGreeting("\nDear Sarah,\nbody"))
	assert.True(t, hasGreeting("Hi team,"))
	assert.False(t, hasGreeting("The report is late."))
	assert.True(t, hasClosing("body\nKind regards,\nJane"))
	assert.False(t, hasClosing("body only"))
}
