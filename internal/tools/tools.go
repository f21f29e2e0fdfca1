package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// Every tool takes a workspace_id; requireWorkspace resolves it to its
// store, turning lookup failures into tool errors.
func requireWorkspace(reg *storage.Registry, workspaceID string) (*storage.WorkspaceStore, *mcp.CallToolResult) {
	if workspaceID == "" {
		return nil, toolError("workspace_id is required")
	}
	ws, err := reg.Get(workspaceID)
	if err != nil {
		return nil, toolError("Failed to open workspace: %v", err)
	}
	return ws, nil
}

// limitOrDefault applies a default when the caller omits a limit. An
// explicit zero or negative value means unlimited.
func limitOrDefault(limit *int, def int) int {
	if limit == nil {
		return def
	}
	return *limit
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
