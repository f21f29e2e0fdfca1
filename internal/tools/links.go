package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// LinkTools holds references needed by context link tool handlers.
type LinkTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type LinkItemsInput struct {
	WorkspaceID      string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	SourceItemType   string `json:"source_item_type" jsonschema:"Kind of the source item (decision, progress_entry, system_pattern, custom_data, product_context, active_context)"`
	SourceItemID     string `json:"source_item_id" jsonschema:"ID of the source item"`
	TargetItemType   string `json:"target_item_type" jsonschema:"Kind of the target item"`
	TargetItemID     string `json:"target_item_id" jsonschema:"ID of the target item"`
	RelationshipType string `json:"relationship_type" jsonschema:"Nature of the relationship (e.g. implements, blocks, clarifies)"`
	Description      string `json:"description,omitempty" jsonschema:"Optional free-form note about the link"`
}

type GetLinkedItemsInput struct {
	WorkspaceID            string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	ItemType               string `json:"item_type" jsonschema:"Kind of the item whose links to fetch"`
	ItemID                 string `json:"item_id" jsonschema:"ID of the item whose links to fetch"`
	RelationshipTypeFilter string `json:"relationship_type_filter,omitempty" jsonschema:"Keep only links with this relationship type"`
	LinkedItemTypeFilter   string `json:"linked_item_type_filter,omitempty" jsonschema:"Keep only links whose other end has this kind"`
	Limit                  *int   `json:"limit,omitempty" jsonschema:"Maximum links, newest first"`
}

type UpdateLinkInput struct {
	WorkspaceID      string  `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	LinkID           int64   `json:"link_id" jsonschema:"ID of the link to update"`
	RelationshipType *string `json:"relationship_type,omitempty" jsonschema:"New relationship type"`
	Description      *string `json:"description,omitempty" jsonschema:"New description"`
}

type DeleteLinkInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	LinkID      int64  `json:"link_id" jsonschema:"ID of the link to delete"`
}

// --- Handlers ---

func (t *LinkTools) LinkItems(_ context.Context, _ *mcp.CallToolRequest, input LinkItemsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	link, err := ws.LogLink(models.ContextLink{
		SourceItemType:   input.SourceItemType,
		SourceItemID:     input.SourceItemID,
		TargetItemType:   input.TargetItemType,
		TargetItemID:     input.TargetItemID,
		RelationshipType: input.RelationshipType,
		Description:      input.Description,
	})
	if err != nil {
		return toolError("Failed to link items: %v", err), nil, nil
	}
	return toolJSON(link)
}

func (t *LinkTools) GetLinkedItems(_ context.Context, _ *mcp.CallToolRequest, input GetLinkedItemsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	links, err := ws.GetLinksForItem(storage.LinkQuery{
		ItemType:         input.ItemType,
		ItemID:           input.ItemID,
		RelationshipType: input.RelationshipTypeFilter,
		LinkedItemType:   input.LinkedItemTypeFilter,
		Limit:            limitOrDefault(input.Limit, 0),
	})
	if err != nil {
		return toolError("Failed to get linked items: %v", err), nil, nil
	}
	if links == nil {
		links = []models.ContextLink{}
	}
	return toolJSON(links)
}

func (t *LinkTools) UpdateLink(_ context.Context, _ *mcp.CallToolRequest, input UpdateLinkInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.UpdateLink(storage.LinkUpdate{
		ID:               input.LinkID,
		RelationshipType: input.RelationshipType,
		Description:      input.Description,
	})
	if err != nil {
		return toolError("Failed to update link: %v", err), nil, nil
	}
	if !found {
		return toolError("Link with ID %d not found", input.LinkID), nil, nil
	}
	return toolText(fmt.Sprintf("Link %d updated.", input.LinkID)), nil, nil
}

func (t *LinkTools) DeleteLink(_ context.Context, _ *mcp.CallToolRequest, input DeleteLinkInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.DeleteLink(input.LinkID)
	if err != nil {
		return toolError("Failed to delete link: %v", err), nil, nil
	}
	if !found {
		return toolError("Link with ID %d not found", input.LinkID), nil, nil
	}
	return toolText(fmt.Sprintf("Link %d deleted.", input.LinkID)), nil, nil
}
