package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/maildraft/api"
)

// ToolError is returned by Client when a tool reports a failure.
type ToolError struct {
	Tool     string
	Response api.ErrorResponse
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Response.Error)
}

// Client calls the drafting tools of an MCP server.
type Client struct {
	client *client.Client
}

// Dial starts the server command over stdio and initializes a session.
func Dial(ctx context.Context, command string, env []string, args ...string) (*Client, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return NewClient(ctx, c)
}

// NewClient starts c and initializes the MCP session.
func NewClient(ctx context.Context, c *client.Client) (*Client, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "maildraft-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	return &Client{client: c}, nil
}

// Close closes the connection to the MCP server.
func (c *Client) Close() error {
	return c.client.Close()
}

// Tools lists the names of the server's tools.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(result.Tools))
	for i, t := range result.Tools {
		names[i] = t.Name
	}
	return names, nil
}

// DraftEmail calls draft_email.
func (c *Client) DraftEmail(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	var out api.GenerateResponse
	if err := c.call(ctx, ToolDraftEmail, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateDraft calls regenerate_draft.
func (c *Client) RegenerateDraft(ctx context.Context, req api.RegenerateRequest) (*api.RegenerateResponse, error) {
	var out api.RegenerateResponse
	if err := c.call(ctx, ToolRegenerateDraft, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, tool string, in, out any) error {
	// Arguments travel as a plain JSON object.
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s arguments: %w", tool, err)
	}
	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return fmt.Errorf("encode %s arguments: %w", tool, err)
	}

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return fmt.Errorf("call %s: %w", tool, err)
	}

	text := resultText(result)
	if result.IsError {
		te := &ToolError{Tool: tool}
		if json.Unmarshal([]byte(text), &te.Response) != nil || te.Response.Error == "" {
			te.Response = api.ErrorResponse{Error: text}
		}
		return te
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode %s result: %w", tool, err)
	}
	return nil
}
