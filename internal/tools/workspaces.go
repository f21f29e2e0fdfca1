package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// WorkspaceTools holds references needed by workspace administration tool
// handlers.
type WorkspaceTools struct {
	Registry *storage.Registry
}

func (t *WorkspaceTools) ListWorkspaces(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	workspaces, err := t.Registry.Workspaces()
	if err != nil {
		return toolError("Failed to list workspaces: %v", err), nil, nil
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	return toolJSON(workspaces)
}
