package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/maildraft"
)

// Tool names.
const (
	ToolDraftEmail      = "draft_email"
	ToolRegenerateDraft = "regenerate_draft"
)

func toneNames() []string {
	names := make([]string, len(ai.Tones))
	for i, t := range ai.Tones {
		names[i] = string(t)
	}
	return names
}

func intentNames() []string {
	names := make([]string, len(ai.Intents))
	for i, in := range ai.Intents {
		names[i] = string(in)
	}
	return names
}

// DraftEmailTool describes the draft_email tool.
func DraftEmailTool() mcp.Tool {
	return mcp.NewTool(ToolDraftEmail,
		mcp.WithDescription("Draft an email from a short natural-language request"),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("What the email should say, e.g. 'Follow up with Sarah about the Q3 report'")),
		mcp.WithString("user_id", mcp.Description("User whose profile and history apply (default: default)")),
		mcp.WithString("tone", mcp.Description("Tone of the draft (default: formal)"), mcp.Enum(toneNames()...)),
		mcp.WithString("recipient", mcp.Description("Recipient name")),
		mcp.WithString("recipient_email", mcp.Description("Recipient email address")),
		mcp.WithNumber("length_preference", mcp.Description("Approximate length in words, 50 to 1500")),
		mcp.WithBoolean("save_to_history", mcp.Description("Save the draft to the user's history (default: true)")),
		mcp.WithBoolean("use_stub", mcp.Description("Answer locally without calling the language model")),
		mcp.WithBoolean("reset_context", mcp.Description("Ignore the user's history for this draft")),
	)
}

// RegenerateDraftTool describes the regenerate_draft tool.
func RegenerateDraftTool() mcp.Tool {
	return mcp.NewTool(ToolRegenerateDraft,
		mcp.WithDescription("Polish a hand-edited draft, re-running the pipeline when the edit is large"),
		mcp.WithString("original_draft", mcp.Required(), mcp.Description("The draft as generated")),
		mcp.WithString("edited_draft", mcp.Required(), mcp.Description("The draft after the user's edits")),
		mcp.WithString("tone", mcp.Description("Tone of the draft (default: formal)"), mcp.Enum(toneNames()...)),
		mcp.WithString("intent", mcp.Description("Intent of the email"), mcp.Enum(intentNames()...)),
		mcp.WithString("recipient", mcp.Description("Recipient name")),
		mcp.WithNumber("length_preference", mcp.Description("Approximate length in words, 50 to 1500")),
		mcp.WithString("user_id", mcp.Description("User whose profile applies (default: default)")),
	)
}

// argumentsJSON re-encodes tool arguments so they decode into wire types.
func argumentsJSON(req mcp.CallToolRequest) ([]byte, error) {
	if req.Params.Arguments == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(req.Params.Arguments)
}

// resultText concatenates the text content of a tool result.
func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		}
	}
	return strings.Join(textParts, "\n")
}
