package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// ProgressTools holds references needed by progress tracking tool
// handlers.
type ProgressTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type LogProgressInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Status      string `json:"status" jsonschema:"Entry status (e.g. TODO, IN_PROGRESS, DONE)"`
	Description string `json:"description" jsonschema:"What the entry tracks"`
	ParentID    *int64 `json:"parent_id,omitempty" jsonschema:"ID of the parent entry, for subtasks"`
}

type GetProgressInput struct {
	WorkspaceID    string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	StatusFilter   string `json:"status_filter,omitempty" jsonschema:"Keep only entries with this status"`
	ParentIDFilter *int64 `json:"parent_id_filter,omitempty" jsonschema:"Keep only children of this entry"`
	Limit          *int   `json:"limit,omitempty" jsonschema:"Maximum entries, newest first"`
}

type UpdateProgressInput struct {
	WorkspaceID string  `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	ProgressID  int64   `json:"progress_id" jsonschema:"ID of the entry to update"`
	Status      *string `json:"status,omitempty" jsonschema:"New status"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	ParentID    *int64  `json:"parent_id,omitempty" jsonschema:"New parent entry ID"`
	ClearParent bool    `json:"clear_parent,omitempty" jsonschema:"Detach the entry from its parent"`
}

type DeleteProgressInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	ProgressID  int64  `json:"progress_id" jsonschema:"ID of the entry to delete"`
}

type SearchProgressInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm   string `json:"query_term" jsonschema:"Full-text query over status and description"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

// --- Handlers ---

func (t *ProgressTools) LogProgress(_ context.Context, _ *mcp.CallToolRequest, input LogProgressInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	p, err := ws.LogProgress(models.ProgressEntry{
		Status:      input.Status,
		Description: input.Description,
		ParentID:    input.ParentID,
	})
	if err != nil {
		return toolError("Failed to log progress: %v", err), nil, nil
	}
	return toolJSON(p)
}

func (t *ProgressTools) GetProgress(_ context.Context, _ *mcp.CallToolRequest, input GetProgressInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	entries, err := ws.GetProgress(storage.ProgressFilter{
		Status:   input.StatusFilter,
		ParentID: input.ParentIDFilter,
		Limit:    limitOrDefault(input.Limit, 0),
	})
	if err != nil {
		return toolError("Failed to get progress entries: %v", err), nil, nil
	}
	if entries == nil {
		entries = []models.ProgressEntry{}
	}
	return toolJSON(entries)
}

func (t *ProgressTools) UpdateProgress(_ context.Context, _ *mcp.CallToolRequest, input UpdateProgressInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.UpdateProgress(storage.ProgressUpdate{
		ID:          input.ProgressID,
		Status:      input.Status,
		Description: input.Description,
		ParentID:    input.ParentID,
		ClearParent: input.ClearParent,
	})
	if err != nil {
		return toolError("Failed to update progress entry: %v", err), nil, nil
	}
	if !found {
		return toolError("Progress entry with ID %d not found", input.ProgressID), nil, nil
	}
	return toolText(fmt.Sprintf("Progress entry %d updated.", input.ProgressID)), nil, nil
}

func (t *ProgressTools) DeleteProgress(_ context.Context, _ *mcp.CallToolRequest, input DeleteProgressInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.DeleteProgress(input.ProgressID)
	if err != nil {
		return toolError("Failed to delete progress entry: %v", err), nil, nil
	}
	if !found {
		return toolError("Progress entry with ID %d not found", input.ProgressID), nil, nil
	}
	return toolText(fmt.Sprintf("Progress entry %d deleted.", input.ProgressID)), nil, nil
}

func (t *ProgressTools) SearchProgress(_ context.Context, _ *mcp.CallToolRequest, input SearchProgressInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	entries, err := ws.SearchProgress(input.QueryTerm, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("Progress search failed: %v", err), nil, nil
	}
	if entries == nil {
		entries = []models.ProgressEntry{}
	}
	return toolJSON(entries)
}
