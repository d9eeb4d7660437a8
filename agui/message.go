package agui

import (
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/maildraft"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// LastUserText returns the content of the last non-empty user message.
func LastUserText(msgs []events.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != RoleUser || msgs[i].Content == nil {
			continue
		}
		if text := strings.TrimSpace(*msgs[i].Content); text != "" {
			return text
		}
	}
	return ""
}

// FromHistory converts history entries into assistant messages, oldest
// first, for a MESSAGES_SNAPSHOT.
func FromHistory(entries []ai.HistoryEntry) []events.Message {
	out := make([]events.Message, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		draft := entries[i].Draft
		id := entries[i].ID
		if id == "" {
			id = events.GenerateMessageID()
		}
		out = append(out, events.Message{
			ID:      id,
			Role:    RoleAssistant,
			Content: &draft,
		})
	}
	return out
}
