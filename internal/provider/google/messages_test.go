package google

import (
	"errors"
	"fmt"
	"testing"

	ai "github.com/spetersoncode/maildraft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	contents, system := convertMessages([]ai.Message{
		{Role: ai.RoleSystem, Content: "one"},
		{Role: ai.RoleSystem, Content: "two"},
		{Role: ai.RoleUser, Content: "draft it"},
		{Role: ai.RoleAssistant, Content: "Dear Sam,"},
		{Role: ai.RoleUser, Content: ""},
	})

	require.NotNil(t, system)
	require.Len(t, system.Parts, 1)
	assert.Equal(t, "one\n\ntwo", system.Parts[0].Text)

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}

func TestConvertMessagesWithoutSystem(t *testing.T) {
	_, system := convertMessages([]ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	assert.Nil(t, system)
}

func TestWrapError(t *testing.T) {
	err := wrapError(fmt.Errorf("call: %w", genai.APIError{Code: 503, Message: "overloaded"}))
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 503, ai.StatusCodeOf(err))

	err = wrapError(genai.APIError{Code: 400, Message: "bad"})
	assert.True(t, ai.IsUserInput(err))

	err = wrapError(genai.APIError{Status: "RESOURCE_EXHAUSTED", Message: "quota"})
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 429, ai.StatusCodeOf(err))

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, plain, wrapError(plain))
}

func TestBlockedError(t *testing.T) {
	assert.Equal(t, "request blocked: SAFETY", (&BlockedError{Reason: "SAFETY"}).Error())
}
