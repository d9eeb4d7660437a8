// Package api exposes the drafting pipeline over HTTP.
//
// The JSON request and response types in this package are the public wire
// contract shared by the HTTP handlers and the MCP tools. Field names are
// stable; optional fields are pointers so that "absent" and "zero" stay
// distinguishable.
//
// Routes served by [Server.Handler]:
//
//	POST /api/generate          draft an email
//	POST /api/generate/stream   draft an email, streaming AG-UI events over SSE
//	POST /api/regenerate        polish a hand-edited draft
//	GET  /api/history           a user's saved drafts, most recent first
//	GET  /api/profile           a user's sender profile
//	PUT  /api/profile           update a user's sender profile
//	GET  /api/usage             process-wide model usage
//	POST /api/render            render a draft as HTML
//	GET  /health                liveness
//	GET  /metrics               Prometheus metrics
package api
