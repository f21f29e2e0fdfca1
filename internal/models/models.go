package models

// Workspace represents a registry entry mapping an opaque workspace
// identifier to its dedicated database file.
type Workspace struct {
	ID           string `json:"id"`
	WorkspaceKey string `json:"workspace_id"`
	DBPath       string `json:"db_path"`
	CreatedAt    string `json:"created_at"`
}

// Decision is a logged architectural or implementation decision.
type Decision struct {
	ID                    int64    `json:"id"`
	Timestamp             string   `json:"timestamp"`
	Summary               string   `json:"summary"`
	Rationale             string   `json:"rationale,omitempty"`
	ImplementationDetails string   `json:"implementation_details,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
}

// ProgressEntry is a task or status update. Entries form a tree through
// ParentID; deleting a parent reparents its children as roots.
type ProgressEntry struct {
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

// SystemPattern is a named design or coding pattern. Name is the natural
// key: logging an existing name updates the row in place.
type SystemPattern struct {
	ID          int64    `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// CustomData is a key-value entry under a category. Category+Key is the
// natural key.
type CustomData struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Key       string `json:"key"`
	Value     any    `json:"value"`
}

// Context is a singleton JSON document (product or active context).
type Context struct {
	ID      int64          `json:"id"`
	Content map[string]any `json:"content"`
}

// ContextHistoryEntry is a snapshot of a context's content taken just
// before an update, with a per-table monotonically increasing version.
type ContextHistoryEntry struct {
	ID           int64          `json:"id"`
	Timestamp    string         `json:"timestamp"`
	Version      int64          `json:"version"`
	Content      map[string]any `json:"content"`
	ChangeSource string         `json:"change_source,omitempty"`
}

// ContextLink is a directed relationship between two items. Item IDs are
// stored as text so composite keys (e.g. custom_data "category:key") and
// numeric surrogate IDs share one column.
type ContextLink struct {
	ID               int64  `json:"id"`
	Timestamp        string `json:"timestamp"`
	SourceItemType   string `json:"source_item_type"`
	SourceItemID     string `json:"source_item_id"`
	TargetItemType   string `json:"target_item_type"`
	TargetItemID     string `json:"target_item_id"`
	RelationshipType string `json:"relationship_type"`
	Description      string `json:"description,omitempty"`
}

// ContextSearchResult is one ranked hit from the context FTS index.
type ContextSearchResult struct {
	ID          int64          `json:"id"`
	ContextType string         `json:"context_type"`
	Content     map[string]any `json:"content"`
	Snippet     string         `json:"content_text_snippet"`
}

// ItemReference identifies an item by kind and ID for bulk resolution.
type ItemReference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ResolvedItem is the per-reference outcome of a bulk resolution. A
// missing or malformed reference produces Success=false with an Error
// message instead of failing the whole batch.
type ResolvedItem struct {
	Reference ItemReference `json:"reference"`
	Success   bool          `json:"success"`
	Item      any           `json:"item,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ActivitySummary aggregates recent changes across all item kinds. Each
// kind's list is independently capped and ordered newest first.
type ActivitySummary struct {
	PeriodStart           string                `json:"summary_period_start"`
	PeriodEnd             string                `json:"summary_period_end"`
	Decisions             []Decision            `json:"recent_decisions"`
	ProgressEntries       []ProgressEntry       `json:"recent_progress_entries"`
	SystemPatterns        []SystemPattern       `json:"recent_system_patterns"`
	ProductContextUpdates []ContextHistoryEntry `json:"recent_product_context_updates"`
	ActiveContextUpdates  []ContextHistoryEntry `json:"recent_active_context_updates"`
	Links                 []ContextLink         `json:"recent_links_created"`
}

// Item type names used in links, history queries and bulk resolution.
const (
	ItemTypeDecision       = "decision"
	ItemTypeProgressEntry  = "progress_entry"
	ItemTypeSystemPattern  = "system_pattern"
	ItemTypeCustomData     = "custom_data"
	ItemTypeProductContext = "product_context"
	ItemTypeActiveContext  = "active_context"
)
