package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
)

// DecisionTools holds references needed by decision log tool handlers.
type DecisionTools struct {
	Registry *storage.Registry
}

// --- Input types ---

type LogDecisionInput struct {
	WorkspaceID           string   `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Summary               string   `json:"summary" jsonschema:"Concise decision summary"`
	Rationale             string   `json:"rationale,omitempty" jsonschema:"Why the decision was made"`
	ImplementationDetails string   `json:"implementation_details,omitempty" jsonschema:"How the decision is being implemented"`
	Tags                  []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
}

type GetDecisionsInput struct {
	WorkspaceID   string   `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	Limit         *int     `json:"limit,omitempty" jsonschema:"Maximum entries, newest first"`
	TagsFilterAll []string `json:"tags_filter_include_all,omitempty" jsonschema:"Keep only decisions carrying every listed tag"`
	TagsFilterAny []string `json:"tags_filter_include_any,omitempty" jsonschema:"Keep only decisions carrying at least one listed tag"`
}

type UpdateDecisionInput struct {
	WorkspaceID           string    `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	DecisionID            int64     `json:"decision_id" jsonschema:"ID of the decision to update"`
	Summary               *string   `json:"summary,omitempty" jsonschema:"New summary"`
	Rationale             *string   `json:"rationale,omitempty" jsonschema:"New rationale"`
	ImplementationDetails *string   `json:"implementation_details,omitempty" jsonschema:"New implementation details"`
	Tags                  *[]string `json:"tags,omitempty" jsonschema:"Replacement tag list"`
}

type DeleteDecisionInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	DecisionID  int64  `json:"decision_id" jsonschema:"ID of the decision to delete"`
}

type SearchDecisionsInput struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"Identifier of the workspace"`
	QueryTerm   string `json:"query_term" jsonschema:"Full-text query (supports FTS5 syntax: AND, OR, NOT, prefix*)"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

// --- Handlers ---

func (t *DecisionTools) LogDecision(_ context.Context, _ *mcp.CallToolRequest, input LogDecisionInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	d, err := ws.LogDecision(models.Decision{
		Summary:               input.Summary,
		Rationale:             input.Rationale,
		ImplementationDetails: input.ImplementationDetails,
		Tags:                  input.Tags,
	})
	if err != nil {
		return toolError("Failed to log decision: %v", err), nil, nil
	}
	return toolJSON(d)
}

func (t *DecisionTools) GetDecisions(_ context.Context, _ *mcp.CallToolRequest, input GetDecisionsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	decisions, err := ws.GetDecisions(storage.DecisionFilter{
		Limit:   limitOrDefault(input.Limit, 0),
		TagsAll: input.TagsFilterAll,
		TagsAny: input.TagsFilterAny,
	})
	if err != nil {
		return toolError("Failed to get decisions: %v", err), nil, nil
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}
	return toolJSON(decisions)
}

func (t *DecisionTools) UpdateDecision(_ context.Context, _ *mcp.CallToolRequest, input UpdateDecisionInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.UpdateDecision(storage.DecisionUpdate{
		ID:                    input.DecisionID,
		Summary:               input.Summary,
		Rationale:             input.Rationale,
		ImplementationDetails: input.ImplementationDetails,
		Tags:                  input.Tags,
	})
	if err != nil {
		return toolError("Failed to update decision: %v", err), nil, nil
	}
	if !found {
		return toolError("Decision with ID %d not found", input.DecisionID), nil, nil
	}
	return toolText(fmt.Sprintf("Decision %d updated.", input.DecisionID)), nil, nil
}

func (t *DecisionTools) DeleteDecision(_ context.Context, _ *mcp.CallToolRequest, input DeleteDecisionInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}

	found, err := ws.DeleteDecision(input.DecisionID)
	if err != nil {
		return toolError("Failed to delete decision: %v", err), nil, nil
	}
	if !found {
		return toolError("Decision with ID %d not found", input.DecisionID), nil, nil
	}
	return toolText(fmt.Sprintf("Decision %d deleted.", input.DecisionID)), nil, nil
}

func (t *DecisionTools) SearchDecisions(_ context.Context, _ *mcp.CallToolRequest, input SearchDecisionsInput) (*mcp.CallToolResult, any, error) {
	ws, errResult := requireWorkspace(t.Registry, input.WorkspaceID)
	if errResult != nil {
		return errResult, nil, nil
	}
	if input.QueryTerm == "" {
		return toolError("query_term is required"), nil, nil
	}

	decisions, err := ws.SearchDecisions(input.QueryTerm, limitOrDefault(input.Limit, 10))
	if err != nil {
		return toolError("Decision search failed: %v", err), nil, nil
	}
	if decisions == nil {
		decisions = []models.Decision{}
	}
	return toolJSON(decisions)
}
