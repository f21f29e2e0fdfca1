package storage

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// setupWorkspace opens a fresh workspace DB in a temp directory.
func setupWorkspace(t *testing.T) *WorkspaceStore {
	t.Helper()
	ws, err := OpenWorkspace(filepath.Join(tempDir(t), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenWorkspace: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestOpenWorkspaceSeedsSingletons(t *testing.T) {
	ws := setupWorkspace(t)

	product, err := ws.GetProductContext()
	if err != nil {
		t.Fatalf("GetProductContext: %v", err)
	}
	if len(product.Content) != 0 {
		t.Errorf("Expected empty product context, got %v", product.Content)
	}

	active, err := ws.GetActiveContext()
	if err != nil {
		t.Fatalf("GetActiveContext: %v", err)
	}
	if len(active.Content) != 0 {
		t.Errorf("Expected empty active context, got %v", active.Content)
	}
}

func TestReindexSearch(t *testing.T) {
	ws := setupWorkspace(t)

	if _, err := ws.LogDecision(models.Decision{Summary: "Adopt sqlite for persistence"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.UpdateProductContext(ContextUpdate{
		Content: map[string]any{"goal": "searchable knowledge base"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := ws.ReindexSearch(); err != nil {
		t.Fatalf("ReindexSearch: %v", err)
	}

	// Indexes must still answer queries after a rebuild.
	decisions, err := ws.SearchDecisions("sqlite", 10)
	if err != nil {
		t.Fatalf("SearchDecisions: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("Expected 1 decision after reindex, got %d", len(decisions))
	}

	contexts, err := ws.SearchContexts("searchable", "", 10)
	if err != nil {
		t.Fatalf("SearchContexts: %v", err)
	}
	if len(contexts) != 1 {
		t.Fatalf("Expected 1 context hit after reindex, got %d", len(contexts))
	}
	if contexts[0].ContextType != "product" {
		t.Errorf("ContextType = %q, want %q", contexts[0].ContextType, "product")
	}
}
