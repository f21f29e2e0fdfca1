package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// PatternTools holds references needed by system pattern tool handlers.
type PatternTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type LogSystemPatternInput struct {
	WorkspaceID string   `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Name        string   `json:"name" jsonschema:"Unique pattern name; logging an existing name updates it in place"`
	Description string   `json:"description,omitempty" jsonschema:"What the pattern is and when to apply it"`
	Tags        []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
}

type GetSystemPatternsInput struct {
	WorkspaceID   string   `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Limit         *int     `json:"limit,omitempty" jsonschema:"Maximum patterns to return"`
	TagsFilterAll []string `json:"tags_filter_include_all,omitempty" jsonschema:"Keep only patterns carrying every listed tag"`
	TagsFilterAny []string `json:"tags_filter_include_any,omitempty" jsonschema:"Keep only patterns carrying at least one listed tag"`
}

type DeleteSystemPatternInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	PatternID   int64  `json:"pattern_id" jsonschema:"ID of the pattern to delete"`
}

type SearchSystemPatternsInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm   string `json:"query_term" jsonschema:"Full-text query over name, description and tags"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

// --- Handlers ---

func (t *PatternTools) LogSystemPattern(_ context.Context, _ *mcp.CallToolRequest, input LogSystemPatternInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	p, err := ws.LogSystemPattern(models.SystemPattern{
		Name:        input.Name,
		Description: input.Description,
		Tags:        input.Tags,
	})
	if err != nil {
		return toolError("Failed to log system pattern: %v", err), nil, nil
	}
	return toolJSON(p)
}

func (t *PatternTools) GetSystemPatterns(_ context.Context, _ *mcp.CallToolRequest, input GetSystemPatternsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	patterns, err := ws.GetSystemPatterns(storage.PatternFilter{
		Limit:   limitOrDefault(input.Limit, 0),
		TagsAll: input.TagsFilterAll,
		TagsAny: input.TagsFilterAny,
	})
	if err != nil {
		return toolError("Failed to get system patterns: %v", err), nil, nil
	}
	if patterns == nil {
		patterns = []models.SystemPattern{}
	}
	return toolJSON(patterns)
}

func (t *PatternTools) DeleteSystemPattern(_ context.Context, _ *mcp.CallToolRequest, input DeleteSystemPatternInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.DeleteSystemPattern(input.PatternID)
	if err != nil {
		return toolError("Failed to delete system pattern: %v", err), nil, nil
	}
	if !found {
		return toolError("System pattern with ID %d not found", input.PatternID), nil, nil
	}
	return toolText(fmt.Sprintf("System pattern %d deleted.", input.PatternID)), nil, nil
}

func (t *PatternTools) SearchSystemPatterns(_ context.Context, _ *mcp.CallToolRequest, input SearchSystemPatternsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	patterns, err := ws.SearchSystemPatterns(input.QueryTerm, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("System pattern search failed: %v", err), nil, nil
	}
	if patterns == nil {
		patterns = []models.SystemPattern{}
	}
	return toolJSON(patterns)
}
