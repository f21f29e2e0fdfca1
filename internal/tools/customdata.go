package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// CustomDataTools holds references needed by custom data tool handlers.
type CustomDataTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type LogCustomDataInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Category    string `json:"category" jsonschema:"Grouping category (e.g. ProjectGlossary, ApiEndpoints)"`
	Key         string `json:"key" jsonschema:"Key within the category; logging an existing category+key replaces the value"`
	Value       any    `json:"value" jsonschema:"Arbitrary JSON-serializable value"`
}

type GetCustomDataInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Category    string `json:"category,omitempty" jsonschema:"Restrict to one category"`
	Key         string `json:"key,omitempty" jsonschema:"Restrict to one key (requires category)"`
}

type GetAllCustomDataInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default unlimited)"`
}

type DeleteCustomDataInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Category    string `json:"category" jsonschema:"Category of the entry to delete"`
	Key         string `json:"key" jsonschema:"Key of the entry to delete"`
}

type SearchCustomDataValueInput struct {
	WorkspaceID    string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm      string `json:"query_term" jsonschema:"Full-text query over category, key and value"`
	CategoryFilter string `json:"category_filter,omitempty" jsonschema:"Restrict matches to one category"`
	Limit          *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

type SearchProjectGlossaryInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm   string `json:"query_term" jsonschema:"Full-text query over glossary terms and definitions"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

// --- Handlers ---

func (t *CustomDataTools) LogCustomData(_ context.Context, _ *mcp.CallToolRequest, input LogCustomDataInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	d, err := ws.LogCustomData(models.CustomData{
		Category: input.Category,
		Key:      input.Key,
		Value:    input.Value,
	})
	if err != nil {
		return toolError("Failed to log custom data: %v", err), nil, nil
	}
	return toolJSON(d)
}

func (t *CustomDataTools) GetCustomData(_ context.Context, _ *mcp.CallToolRequest, input GetCustomDataInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	items, err := ws.GetCustomData(input.Category, input.Key)
	if err != nil {
		return toolError("Failed to get custom data: %v", err), nil, nil
	}
	if items == nil {
		items = []models.CustomData{}
	}
	return toolJSON(items)
}

func (t *CustomDataTools) GetAllCustomData(_ context.Context, _ *mcp.CallToolRequest, input GetAllCustomDataInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	items, err := ws.GetAllCustomDataByIDDesc(limitOrDefault(input.Limit, 0))
	if err != nil {
		return toolError("Failed to get custom data: %v", err), nil, nil
	}
	if items == nil {
		items = []models.CustomData{}
	}
	return toolJSON(items)
}

func (t *CustomDataTools) DeleteCustomData(_ context.Context, _ *mcp.CallToolRequest, input DeleteCustomDataInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.Category == "" || input.Key == "" {
		return toolError("category and key are required"), nil, nil
	}

	found, err := ws.DeleteCustomData(input.Category, input.Key)
	if err != nil {
		return toolError("Failed to delete custom data: %v", err), nil, nil
	}
	if !found {
		return toolError("Custom data %s:%s not found", input.Category, input.Key), nil, nil
	}
	return toolText(fmt.Sprintf("Custom data %s:%s deleted.", input.Category, input.Key)), nil, nil
}

func (t *CustomDataTools) SearchCustomDataValue(_ context.Context, _ *mcp.CallToolRequest, input SearchCustomDataValueInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	items, err := ws.SearchCustomDataValue(input.QueryTerm, input.CategoryFilter, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("Custom data search failed: %v", err), nil, nil
	}
	if items == nil {
		items = []models.CustomData{}
	}
	return toolJSON(items)
}

func (t *CustomDataTools) SearchProjectGlossary(_ context.Context, _ *mcp.CallToolRequest, input SearchProjectGlossaryInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	items, err := ws.SearchProjectGlossary(input.QueryTerm, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("Glossary search failed: %v", err), nil, nil
	}
	if items == nil {
		items = []models.CustomData{}
	}
	return toolJSON(items)
}
