package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/storage"
	"github.com/wagnerlima/context-portal/portal-mcp/internal/tools"
)

// New creates a fully configured MCP server with all tools registered.
func New(reg *storage.Registry) *mcp.Server {
	ct := &tools.ContextTools{Registry: reg}
	dt := &tools.DecisionTools{Registry: reg}
	pt := &tools.ProgressTools{Registry: reg}
	st := &tools.PatternTools{Registry: reg}
	cd := &tools.CustomDataTools{Registry: reg}
	lt := &tools.LinkTools{Registry: reg}
	rt := &tools.ReportTools{Registry: reg}
	bt := &tools.BatchTools{Registry: reg}
	wt := &tools.WorkspaceTools{Registry: reg}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "portal-mcp",
		Version: "0.1.0",
	}, nil)

	// Product and active context tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_product_context",
		Description: "Get the workspace's product context (long-lived project description)",
	}, ct.GetProductContext)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_product_context",
		Description: "Replace or patch the product context; __DELETE__ in a patch removes a key",
	}, ct.UpdateProductContext)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_active_context",
		Description: "Get the workspace's active context (current working focus)",
	}, ct.GetActiveContext)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_active_context",
		Description: "Replace or patch the active context; __DELETE__ in a patch removes a key",
	}, ct.UpdateActiveContext)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_item_history",
		Description: "Get versioned history of the product or active context, newest first",
	}, ct.GetItemHistory)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_contexts",
		Description: "Search product and active context content using FTS5 full-text search",
	}, ct.SearchContexts)

	// Decision tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "log_decision",
		Description: "Log an architectural or implementation decision",
	}, dt.LogDecision)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_decisions",
		Description: "List decisions, newest first, with optional tag filters",
	}, dt.GetDecisions)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_decision",
		Description: "Update fields of an existing decision",
	}, dt.UpdateDecision)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_decision_by_id",
		Description: "Delete a decision and any links referencing it",
	}, dt.DeleteDecision)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_decisions_fts",
		Description: "Search decisions using FTS5 full-text search over summary, rationale, details and tags",
	}, dt.SearchDecisions)

	// Progress tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "log_progress",
		Description: "Log a progress entry or task, optionally under a parent entry",
	}, pt.LogProgress)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_progress",
		Description: "List progress entries, newest first, with optional status and parent filters",
	}, pt.GetProgress)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_progress",
		Description: "Update a progress entry's status, description or parent",
	}, pt.UpdateProgress)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_progress_by_id",
		Description: "Delete a progress entry; its children become root entries",
	}, pt.DeleteProgress)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_progress_fts",
		Description: "Search progress entries using FTS5 full-text search",
	}, pt.SearchProgress)

	// System pattern tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "log_system_pattern",
		Description: "Log a named system pattern; re-logging a name updates it in place",
	}, st.LogSystemPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_system_patterns",
		Description: "List system patterns ordered by name, with optional tag filters",
	}, st.GetSystemPatterns)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_system_pattern_by_id",
		Description: "Delete a system pattern and any links referencing it",
	}, st.DeleteSystemPattern)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_system_patterns_fts",
		Description: "Search system patterns using FTS5 full-text search",
	}, st.SearchSystemPatterns)

	// Custom data tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "log_custom_data",
		Description: "Store a JSON value under a category and key; existing entries are replaced",
	}, cd.LogCustomData)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_custom_data",
		Description: "Get custom data, optionally scoped to a category or a single key",
	}, cd.GetCustomData)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_all_custom_data_by_id_desc",
		Description: "List every custom data entry across categories, most recently created first",
	}, cd.GetAllCustomData)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_custom_data",
		Description: "Delete a custom data entry and any links referencing it",
	}, cd.DeleteCustomData)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_custom_data_value_fts",
		Description: "Search custom data using FTS5 full-text search over category, key and value",
	}, cd.SearchCustomDataValue)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_project_glossary_fts",
		Description: "Search the ProjectGlossary category using FTS5 full-text search",
	}, cd.SearchProjectGlossary)

	// Link tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "link_items",
		Description: "Create a directed relationship between two knowledge items",
	}, lt.LinkItems)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_linked_items",
		Description: "Get links touching an item in either direction, with optional filters",
	}, lt.GetLinkedItems)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_link",
		Description: "Update a link's relationship type or description",
	}, lt.UpdateLink)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_link_by_id",
		Description: "Delete a link by its ID",
	}, lt.DeleteLink)

	// Reporting and bulk tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_recent_activity_summary",
		Description: "Summarize items created or changed inside a recent time window",
	}, rt.GetRecentActivitySummary)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_items_by_references",
		Description: "Resolve a batch of item references or link endpoints to their current state",
	}, rt.GetItemsByReferences)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "batch_log_items",
		Description: "Log multiple items of one kind in a single call; failures are reported per item",
	}, bt.BatchLogItems)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_workspaces",
		Description: "List every workspace known to this server",
	}, wt.ListWorkspaces)

	return srv
}
