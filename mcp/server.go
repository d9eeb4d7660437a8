package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/api"
	"github.com/spetersoncode/maildraft/workflow"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	logger  *slog.Logger
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithLogger sets the logger for tool calls.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// NewServer creates an MCP server exposing draft_email and
// regenerate_draft backed by svc.
func NewServer(svc *api.Service, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "maildraft",
		version: "1.0.0",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)
	h := &handlers{svc: svc, logger: cfg.logger}
	s.AddTool(DraftEmailTool(), h.draftEmail)
	s.AddTool(RegenerateDraftTool(), h.regenerateDraft)
	return s
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
func ServeStdio(svc *api.Service, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(svc, opts...))
}

type handlers struct {
	svc    *api.Service
	logger *slog.Logger
}

func (h *handlers) draftEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := argumentsJSON(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
	}
	in, err := api.DecodeGenerateRequest(bytes.NewReader(args))
	if err != nil {
		return h.toolError(ToolDraftEmail, err), nil
	}

	resp, err := h.svc.Generate(ctx, in)
	if err != nil {
		return h.toolError(ToolDraftEmail, err), nil
	}
	h.logger.Info("tool call complete", "tool", ToolDraftEmail, "user_id", in.UserID, "intent", resp.Intent)
	return jsonResult(resp)
}

func (h *handlers) regenerateDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := argumentsJSON(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
	}
	in, err := api.DecodeRegenerateRequest(bytes.NewReader(args))
	if err != nil {
		return h.toolError(ToolRegenerateDraft, err), nil
	}

	resp, err := h.svc.Regenerate(ctx, in)
	if err != nil {
		return h.toolError(ToolRegenerateDraft, err), nil
	}
	h.logger.Info("tool call complete", "tool", ToolRegenerateDraft, "user_id", in.UserID, "workflow_type", resp.WorkflowType)
	return jsonResult(resp)
}

// toolError reports err as a tool-level error carrying an
// api.ErrorResponse, including the fallback draft when there is one.
func (h *handlers) toolError(tool string, err error) *mcp.CallToolResult {
	resp := api.ErrorResponse{Error: err.Error()}
	var serr *ai.ServiceError
	if errors.As(err, &serr) && serr.Fallback != "" {
		resp.Draft = serr.Fallback
		resp.Metadata = map[string]any{workflow.MetaSource: "stub"}
	}
	h.logger.Warn("tool call failed", "tool", tool, "error", err)

	data, mErr := json.Marshal(resp)
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
