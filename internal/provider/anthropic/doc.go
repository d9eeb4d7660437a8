// Package anthropic adapts the Anthropic Messages API to [maildraft.ChatProvider].
//
// Only single-shot text completion is exposed. System messages are lifted
// into the request's system blocks and empty turns are dropped, since the
// API rejects empty text blocks.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel(model.ClaudeHaiku45.String()))
//	resp, err := client.Chat(ctx, messages, maildraft.WithMaxTokens(1024))
//
// Failures are returned as categorized [maildraft.Error] values carrying the
// HTTP status and any Retry-After hint.
package anthropic
