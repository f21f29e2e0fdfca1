package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// ContextTools holds references needed by product/active context tool
// handlers.
type ContextTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type GetContextInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
}

type UpdateContextInput struct {
	WorkspaceID  string         `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Content      map[string]any `json:"content,omitempty" jsonschema:"Full replacement content (mutually exclusive with patch_content)"`
	PatchContent map[string]any `json:"patch_content,omitempty" jsonschema:"Partial update merged key-by-key; a value of __DELETE__ removes the key"`
}

type GetItemHistoryInput struct {
	WorkspaceID     string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	ItemType        string `json:"item_type" jsonschema:"History to read: product_context or active_context"`
	Version         *int64 `json:"version,omitempty" jsonschema:"Return only this exact version"`
	BeforeTimestamp string `json:"before_timestamp,omitempty" jsonschema:"Only versions recorded before this timestamp (YYYY-MM-DD HH:MM:SS, UTC)"`
	AfterTimestamp  string `json:"after_timestamp,omitempty" jsonschema:"Only versions recorded at or after this timestamp"`
	Limit           *int   `json:"limit,omitempty" jsonschema:"Maximum entries to return, newest first"`
}

type SearchContextsInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm   string `json:"query_term" jsonschema:"Full-text query over context content (supports FTS5 syntax)"`
	ContextType string `json:"context_type,omitempty" jsonschema:"Restrict to product or active"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

// --- Handlers ---

func (t *ContextTools) GetProductContext(_ context.Context, _ *mcp.CallToolRequest, input GetContextInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	ctx, err := ws.GetProductContext()
	if err != nil {
		return toolError("Failed to get product context: %v", err), nil, nil
	}
	return toolJSON(ctx)
}

func (t *ContextTools) UpdateProductContext(_ context.Context, _ *mcp.CallToolRequest, input UpdateContextInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	err := ws.UpdateProductContext(storage.ContextUpdate{
		Content:      input.Content,
		PatchContent: input.PatchContent,
	})
	if err != nil {
		return toolError("Failed to update product context: %v", err), nil, nil
	}
	return toolText("Product context updated."), nil, nil
}

func (t *ContextTools) GetActiveContext(_ context.Context, _ *mcp.CallToolRequest, input GetContextInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	ctx, err := ws.GetActiveContext()
	if err != nil {
		return toolError("Failed to get active context: %v", err), nil, nil
	}
	return toolJSON(ctx)
}

func (t *ContextTools) UpdateActiveContext(_ context.Context, _ *mcp.CallToolRequest, input UpdateContextInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	err := ws.UpdateActiveContext(storage.ContextUpdate{
		Content:      input.Content,
		PatchContent: input.PatchContent,
	})
	if err != nil {
		return toolError("Failed to update active context: %v", err), nil, nil
	}
	return toolText("Active context updated."), nil, nil
}

func (t *ContextTools) GetItemHistory(_ context.Context, _ *mcp.CallToolRequest, input GetItemHistoryInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	entries, err := ws.GetItemHistory(storage.HistoryQuery{
		ItemType:        input.ItemType,
		Version:         input.Version,
		BeforeTimestamp: input.BeforeTimestamp,
		AfterTimestamp:  input.AfterTimestamp,
		Limit:           limitOrDefault(input.Limit, 0),
	})
	if err != nil {
		return toolError("Failed to get item history: %v", err), nil, nil
	}
	return toolJSON(entries)
}

func (t *ContextTools) SearchContexts(_ context.Context, _ *mcp.CallToolRequest, input SearchContextsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	results, err := ws.SearchContexts(input.QueryTerm, input.ContextType, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("Context search failed: %v", err), nil, nil
	}
	return toolJSON(results)
}
