package storage

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

func TestUpdateProductContextFullReplacement(t *testing.T) {
	ws := setupWorkspace(t)

	err := ws.UpdateProductContext(ContextUpdate{
		Content: map[string]any{"name": "portal", "goal": "knowledge base"},
	})
	if err != nil {
		t.Fatalf("UpdateProductContext: %v", err)
	}

	ctx, err := ws.GetProductContext()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Content["name"] != "portal" {
		t.Errorf("Content = %v, want the replacement", ctx.Content)
	}

	// Replacement discards keys absent from the new content.
	if err := ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"name": "portal-v2"}}); err != nil {
		t.Fatal(err)
	}
	ctx, _ = ws.GetProductContext()
	if _, ok := ctx.Content["goal"]; ok {
		t.Error("Full replacement should drop old keys")
	}
}

func TestUpdateActiveContextPatch(t *testing.T) {
	ws := setupWorkspace(t)

	if err := ws.UpdateActiveContext(ContextUpdate{
		Content: map[string]any{"focus": "storage", "sprint": "12", "blocker": "ci"},
	}); err != nil {
		t.Fatal(err)
	}

	// Patch sets, overwrites, and deletes via the sentinel in one shot.
	err := ws.UpdateActiveContext(ContextUpdate{
		PatchContent: map[string]any{
			"focus":   "transport",
			"owner":   "alice",
			"blocker": DeleteSentinel,
		},
	})
	if err != nil {
		t.Fatalf("UpdateActiveContext patch: %v", err)
	}

	ctx, _ := ws.GetActiveContext()
	if ctx.Content["focus"] != "transport" {
		t.Errorf("focus = %v, want overwritten value", ctx.Content["focus"])
	}
	if ctx.Content["owner"] != "alice" {
		t.Errorf("owner = %v, want added value", ctx.Content["owner"])
	}
	if ctx.Content["sprint"] != "12" {
		t.Errorf("sprint = %v, want untouched value", ctx.Content["sprint"])
	}
	if _, ok := ctx.Content["blocker"]; ok {
		t.Error("Sentinel-valued key should be removed")
	}
}

func TestUpdateContextInputExclusivity(t *testing.T) {
	ws := setupWorkspace(t)

	var verr *ValidationError
	err := ws.UpdateProductContext(ContextUpdate{})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for neither input, got %v", err)
	}

	err = ws.UpdateProductContext(ContextUpdate{
		Content:      map[string]any{"a": 1},
		PatchContent: map[string]any{"b": 2},
	})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for both inputs, got %v", err)
	}

	// A rejected update must leave no history row behind.
	history, err := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeProductContext})
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("Expected no history after rejected updates, got %d entries", len(history))
	}
}

func TestContextHistoryVersions(t *testing.T) {
	ws := setupWorkspace(t)

	ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"rev": "one"}})
	ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"rev": "two"}, ChangeSource: "planning session"})
	ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"rev": "three"}})

	history, err := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeProductContext})
	if err != nil {
		t.Fatalf("GetItemHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(history))
	}
	// Newest first, versions dense from 1.
	for i, want := range []int64{3, 2, 1} {
		if history[i].Version != want {
			t.Errorf("history[%d].Version = %d, want %d", i, history[i].Version, want)
		}
	}
	// Each entry snapshots the content as it was before that update.
	if history[2].Content["rev"] != nil {
		t.Errorf("Version 1 should snapshot the seeded empty content, got %v", history[2].Content)
	}
	if history[0].Content["rev"] != "two" {
		t.Errorf("Version 3 should snapshot %q, got %v", "two", history[0].Content["rev"])
	}
	if history[1].ChangeSource != "planning session" {
		t.Errorf("ChangeSource = %q, want the caller-supplied label", history[1].ChangeSource)
	}
	if history[0].ChangeSource != "update_product_context" {
		t.Errorf("ChangeSource = %q, want the default label", history[0].ChangeSource)
	}

	version := int64(2)
	one, err := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeProductContext, Version: &version})
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].Version != 2 {
		t.Errorf("Version filter: expected exactly version 2, got %v", one)
	}

	limited, err := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeProductContext, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("Limit: expected 2 entries, got %d", len(limited))
	}
}

func TestGetItemHistoryBadType(t *testing.T) {
	ws := setupWorkspace(t)

	_, err := ws.GetItemHistory(HistoryQuery{ItemType: "decision"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for unsupported item type, got %v", err)
	}
}

func TestContextHistoriesAreIndependent(t *testing.T) {
	ws := setupWorkspace(t)

	ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"p": 1}})
	ws.UpdateActiveContext(ContextUpdate{Content: map[string]any{"a": 1}})
	ws.UpdateActiveContext(ContextUpdate{Content: map[string]any{"a": 2}})

	product, _ := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeProductContext})
	active, _ := ws.GetItemHistory(HistoryQuery{ItemType: models.ItemTypeActiveContext})
	if len(product) != 1 || len(active) != 2 {
		t.Errorf("Expected independent version streams, got product=%d active=%d", len(product), len(active))
	}
}

func TestSearchContexts(t *testing.T) {
	ws := setupWorkspace(t)

	ws.UpdateProductContext(ContextUpdate{Content: map[string]any{"architecture": "hexagonal ports and adapters"}})
	ws.UpdateActiveContext(ContextUpdate{Content: map[string]any{"focus": "hexagonal refactor of transport"}})

	results, err := ws.SearchContexts("hexagonal", "", 10)
	if err != nil {
		t.Fatalf("SearchContexts: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected hits in both contexts, got %d", len(results))
	}

	product, err := ws.SearchContexts("hexagonal", "product", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(product) != 1 || product[0].ContextType != "product" {
		t.Errorf("Type filter: expected only the product hit, got %v", product)
	}
	if product[0].Snippet == "" {
		t.Error("Expected a non-empty snippet")
	}
}

func TestSnippetRuneBoundary(t *testing.T) {
	if got := snippet("short", 10); got != "short" {
		t.Errorf("Expected text under the cap untouched, got %q", got)
	}
	if got := snippet("abcdef", 4); got != "abcd..." {
		t.Errorf("Expected a 4-byte cut, got %q", got)
	}

	// "héllo" is h(1) é(2) l l o; a 2-byte cap lands inside é.
	got := snippet("héllo", 2)
	if !utf8.ValidString(got) {
		t.Fatalf("Expected valid UTF-8, got %q", got)
	}
	if got != "h..." {
		t.Errorf("Expected the cut to back off to the rune boundary, got %q", got)
	}
}
