package storage

import (
	"errors"
	"strconv"
	"testing"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

func TestLogSystemPatternUpsert(t *testing.T) {
	ws := setupWorkspace(t)

	first, err := ws.LogSystemPattern(models.SystemPattern{
		Name:        "Retry Policy",
		Description: "Retry transient failures three times",
		Tags:        []string{"resilience"},
	})
	if err != nil {
		t.Fatalf("LogSystemPattern: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("Expected assigned ID")
	}

	// Re-logging the same name updates in place, keeping the ID.
	second, err := ws.LogSystemPattern(models.SystemPattern{
		Name:        "Retry Policy",
		Description: "Retry with exponential backoff",
	})
	if err != nil {
		t.Fatalf("LogSystemPattern upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Upsert changed ID: %d -> %d", first.ID, second.ID)
	}

	patterns, err := ws.GetSystemPatterns(PatternFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 1 {
		t.Fatalf("Expected exactly 1 row, got %d", len(patterns))
	}
	if patterns[0].Description != "Retry with exponential backoff" {
		t.Errorf("Description = %q, want the updated text", patterns[0].Description)
	}
}

func TestUpsertPreservesLinks(t *testing.T) {
	ws := setupWorkspace(t)

	p, _ := ws.LogSystemPattern(models.SystemPattern{Name: "Circuit Breaker", Description: "v1"})
	d, _ := ws.LogDecision(models.Decision{Summary: "Adopt circuit breakers"})

	_, err := ws.LogLink(models.ContextLink{
		SourceItemType:   models.ItemTypeDecision,
		SourceItemID:     strconv.FormatInt(d.ID, 10),
		TargetItemType:   models.ItemTypeSystemPattern,
		TargetItemID:     strconv.FormatInt(p.ID, 10),
		RelationshipType: "adopts",
	})
	if err != nil {
		t.Fatal(err)
	}

	// The in-place update must leave the link resolvable.
	ws.LogSystemPattern(models.SystemPattern{Name: "Circuit Breaker", Description: "v2"})

	links, err := ws.GetLinksForItem(LinkQuery{ItemType: models.ItemTypeSystemPattern, ItemID: strconv.FormatInt(p.ID, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 {
		t.Fatalf("Expected link to survive the upsert, got %d links", len(links))
	}
}

func TestGetSystemPatternsOrderAndFilters(t *testing.T) {
	ws := setupWorkspace(t)

	ws.LogSystemPattern(models.SystemPattern{Name: "Zebra", Tags: []string{"naming"}})
	ws.LogSystemPattern(models.SystemPattern{Name: "Alpha", Tags: []string{"naming", "core"}})

	patterns, err := ws.GetSystemPatterns(PatternFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 2 || patterns[0].Name != "Alpha" {
		t.Errorf("Expected alphabetical order, got %v", patterns)
	}

	core, err := ws.GetSystemPatterns(PatternFilter{TagsAll: []string{"core"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(core) != 1 || core[0].Name != "Alpha" {
		t.Errorf("TagsAll filter: expected only Alpha, got %v", core)
	}
}

func TestLogSystemPatternRequiresName(t *testing.T) {
	ws := setupWorkspace(t)

	_, err := ws.LogSystemPattern(models.SystemPattern{Description: "anonymous"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestDeleteSystemPattern(t *testing.T) {
	ws := setupWorkspace(t)
	p, _ := ws.LogSystemPattern(models.SystemPattern{Name: "Obsolete"})

	found, err := ws.DeleteSystemPattern(p.ID)
	if err != nil {
		t.Fatalf("DeleteSystemPattern: %v", err)
	}
	if !found {
		t.Fatal("Expected delete to find the pattern")
	}
	if _, err := ws.GetSystemPattern(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSearchSystemPatterns(t *testing.T) {
	ws := setupWorkspace(t)

	ws.LogSystemPattern(models.SystemPattern{Name: "Saga", Description: "Distributed transaction compensation"})
	ws.LogSystemPattern(models.SystemPattern{Name: "Outbox", Description: "Reliable event publication", Tags: []string{"messaging"}})

	results, err := ws.SearchSystemPatterns("compensation", 10)
	if err != nil {
		t.Fatalf("SearchSystemPatterns: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Saga" {
		t.Fatalf("Expected Saga, got %v", results)
	}

	results, err = ws.SearchSystemPatterns("messaging", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "Outbox" {
		t.Errorf("Expected Outbox via tags, got %v", results)
	}
}
