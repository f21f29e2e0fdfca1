package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// ReportTools holds references needed by cross-item reporting tool
// handlers.
type ReportTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type RecentActivityInput struct {
	WorkspaceID  string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Since        string `json:"since,omitempty" jsonschema:"Window start (YYYY-MM-DD HH:MM:SS, UTC); overrides hours_ago"`
	HoursAgo     int    `json:"hours_ago,omitempty" jsonschema:"Window size in hours before now (default 24)"`
	LimitPerType *int   `json:"limit_per_type,omitempty" jsonschema:"Maximum items per kind (default 5)"`
}

type ItemReferenceInput struct {
	Type string `json:"type" jsonschema:"Item kind (decision, progress_entry, system_pattern, custom_data, product_context, active_context)"`
	ID   string `json:"id" jsonschema:"Item ID; custom data also accepts category:key or a bare key"`
}

type LinkReferenceInput struct {
	SourceItemType string `json:"source_item_type" jsonschema:"Kind of the link's source item"`
	SourceItemID   string `json:"source_item_id" jsonschema:"ID of the link's source item"`
	TargetItemType string `json:"target_item_type" jsonschema:"Kind of the link's target item"`
	TargetItemID   string `json:"target_item_id" jsonschema:"ID of the link's target item"`
}

type GetItemsByReferencesInput struct {
	WorkspaceID string               `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	References  []ItemReferenceInput `json:"references,omitempty" jsonschema:"Direct item references (mutually exclusive with links)"`
	Links       []LinkReferenceInput `json:"links,omitempty" jsonschema:"Links whose endpoints to resolve (mutually exclusive with references)"`
}

// --- Handlers ---

func (t *ReportTools) GetRecentActivitySummary(_ context.Context, _ *mcp.CallToolRequest, input RecentActivityInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	summary, err := ws.GetRecentActivity(storage.ActivityQuery{
		Since:        input.Since,
		HoursAgo:     input.HoursAgo,
		LimitPerType: limitOrDefault(input.LimitPerType, 5),
	})
	if err != nil {
		return toolError("Failed to get recent activity: %v", err), nil, nil
	}
	return toolJSON(summary)
}

func (t *ReportTools) GetItemsByReferences(_ context.Context, _ *mcp.CallToolRequest, input GetItemsByReferencesInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	refs := make([]models.ItemReference, len(input.References))
	for i, r := range input.References {
		refs[i] = models.ItemReference{Type: r.Type, ID: r.ID}
	}
	links := make([]models.ContextLink, len(input.Links))
	for i, l := range input.Links {
		links[i] = models.ContextLink{
			SourceItemType: l.SourceItemType,
			SourceItemID:   l.SourceItemID,
			TargetItemType: l.TargetItemType,
			TargetItemID:   l.TargetItemID,
		}
	}

	resolved, err := ws.ResolveReferences(refs, links)
	if err != nil {
		return toolError("Failed to resolve references: %v", err), nil, nil
	}
	return toolJSON(resolved)
}
