package storage

import (
	"errors"
	"testing"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

func TestLogAndGetDecisions(t *testing.T) {
	ws := setupWorkspace(t)

	d, err := ws.LogDecision(models.Decision{
		Summary:   "Use SQLite for persistence",
		Rationale: "Zero-ops embedded database",
		Tags:      []string{"storage", "architecture"},
	})
	if err != nil {
		t.Fatalf("LogDecision: %v", err)
	}
	if d.ID == 0 {
		t.Error("Expected assigned ID")
	}
	if d.Timestamp == "" {
		t.Error("Expected assigned timestamp")
	}

	ws.LogDecision(models.Decision{Summary: "Expose MCP over stdio", Tags: []string{"transport"}})

	decisions, err := ws.GetDecisions(DecisionFilter{})
	if err != nil {
		t.Fatalf("GetDecisions: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(decisions))
	}
	// Newest first.
	if decisions[0].Summary != "Expose MCP over stdio" {
		t.Errorf("Expected newest decision first, got %q", decisions[0].Summary)
	}
	if len(decisions[1].Tags) != 2 {
		t.Errorf("Expected 2 tags preserved, got %v", decisions[1].Tags)
	}
}

func TestLogDecisionRequiresSummary(t *testing.T) {
	ws := setupWorkspace(t)

	_, err := ws.LogDecision(models.Decision{Rationale: "no summary"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestGetDecisionsTagFilters(t *testing.T) {
	ws := setupWorkspace(t)

	ws.LogDecision(models.Decision{Summary: "A", Tags: []string{"db", "infra"}})
	ws.LogDecision(models.Decision{Summary: "B", Tags: []string{"db"}})
	ws.LogDecision(models.Decision{Summary: "C", Tags: []string{"api"}})

	all, err := ws.GetDecisions(DecisionFilter{TagsAll: []string{"db", "infra"}})
	if err != nil {
		t.Fatalf("GetDecisions: %v", err)
	}
	if len(all) != 1 || all[0].Summary != "A" {
		t.Errorf("TagsAll filter: expected only A, got %v", all)
	}

	anyOf, err := ws.GetDecisions(DecisionFilter{TagsAny: []string{"infra", "api"}})
	if err != nil {
		t.Fatalf("GetDecisions: %v", err)
	}
	if len(anyOf) != 2 {
		t.Errorf("TagsAny filter: expected 2 decisions, got %d", len(anyOf))
	}

	_, err = ws.GetDecisions(DecisionFilter{TagsAll: []string{"db"}, TagsAny: []string{"api"}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for combined tag filters, got %v", err)
	}
}

func TestUpdateDecisionPartial(t *testing.T) {
	ws := setupWorkspace(t)

	d, _ := ws.LogDecision(models.Decision{
		Summary:   "Original summary",
		Rationale: "Original rationale",
		Tags:      []string{"keep"},
	})

	rationale := "Revised rationale"
	found, err := ws.UpdateDecision(DecisionUpdate{ID: d.ID, Rationale: &rationale})
	if err != nil {
		t.Fatalf("UpdateDecision: %v", err)
	}
	if !found {
		t.Fatal("Expected update to find the decision")
	}

	got, err := ws.GetDecision(d.ID)
	if err != nil {
		t.Fatalf("GetDecision: %v", err)
	}
	if got.Rationale != "Revised rationale" {
		t.Errorf("Rationale = %q, want %q", got.Rationale, "Revised rationale")
	}
	// Omitted fields stay untouched.
	if got.Summary != "Original summary" {
		t.Errorf("Summary should be unchanged, got %q", got.Summary)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "keep" {
		t.Errorf("Tags should be unchanged, got %v", got.Tags)
	}
}

func TestUpdateDecisionNoFields(t *testing.T) {
	ws := setupWorkspace(t)
	d, _ := ws.LogDecision(models.Decision{Summary: "X"})

	_, err := ws.UpdateDecision(DecisionUpdate{ID: d.ID})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for empty update, got %v", err)
	}
}

func TestUpdateDecisionNotFound(t *testing.T) {
	ws := setupWorkspace(t)

	s := "new"
	found, err := ws.UpdateDecision(DecisionUpdate{ID: 999, Summary: &s})
	if err != nil {
		t.Fatalf("UpdateDecision: %v", err)
	}
	if found {
		t.Error("Expected found=false for missing ID")
	}
}

func TestDeleteDecision(t *testing.T) {
	ws := setupWorkspace(t)
	d, _ := ws.LogDecision(models.Decision{Summary: "Doomed"})

	found, err := ws.DeleteDecision(d.ID)
	if err != nil {
		t.Fatalf("DeleteDecision: %v", err)
	}
	if !found {
		t.Fatal("Expected delete to find the decision")
	}

	if _, err := ws.GetDecision(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	found, err = ws.DeleteDecision(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Second delete should report found=false")
	}
}

func TestSearchDecisions(t *testing.T) {
	ws := setupWorkspace(t)

	ws.LogDecision(models.Decision{Summary: "Adopt structured logging", Rationale: "Machine-parseable output"})
	ws.LogDecision(models.Decision{Summary: "Switch to token auth", Tags: []string{"security"}})

	results, err := ws.SearchDecisions("logging", 10)
	if err != nil {
		t.Fatalf("SearchDecisions: %v", err)
	}
	if len(results) != 1 || results[0].Summary != "Adopt structured logging" {
		t.Fatalf("Expected the logging decision, got %v", results)
	}

	// Tags are indexed too.
	results, err = ws.SearchDecisions("security", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 hit via tags, got %d", len(results))
	}

	// The index follows updates through triggers.
	s := "Switch to certificate auth"
	ws.UpdateDecision(DecisionUpdate{ID: results[0].ID, Summary: &s})
	results, err = ws.SearchDecisions("certificate", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected updated text to be searchable, got %d hits", len(results))
	}
	results, _ = ws.SearchDecisions("token", 10)
	if len(results) != 0 {
		t.Errorf("Old text should no longer match, got %d hits", len(results))
	}
}
