// Package mcp exposes the drafting pipeline as MCP (Model Context Protocol)
// tools.
//
// The server offers two tools whose arguments and results use the same
// JSON shapes as the HTTP API:
//
//   - draft_email: drafts an email from a prompt (api.GenerateRequest in,
//     api.GenerateResponse out).
//   - regenerate_draft: polishes a hand-edited draft (api.RegenerateRequest
//     in, api.RegenerateResponse out).
//
// Serving over stdio:
//
//	svc := api.NewService(orch, router)
//	if err := mcp.ServeStdio(svc); err != nil {
//	    log.Fatal(err)
//	}
//
// [Client] calls the tools of a running server with typed requests.
package mcp
