package storage

import (
	"errors"
	"strconv"
	"testing"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

func linkDecisionToProgress(t *testing.T, ws *WorkspaceStore) (models.Decision, models.ProgressEntry, models.ContextLink) {
	t.Helper()
	d, err := ws.LogDecision(models.Decision{Summary: "Use triggers for FTS sync"})
	if err != nil {
		t.Fatal(err)
	}
	p, err := ws.LogProgress(models.ProgressEntry{Status: "TODO", Description: "Write trigger DDL"})
	if err != nil {
		t.Fatal(err)
	}
	l, err := ws.LogLink(models.ContextLink{
		SourceItemType:   models.ItemTypeDecision,
		SourceItemID:     strconv.FormatInt(d.ID, 10),
		TargetItemType:   models.ItemTypeProgressEntry,
		TargetItemID:     strconv.FormatInt(p.ID, 10),
		RelationshipType: "tracked_by",
	})
	if err != nil {
		t.Fatal(err)
	}
	return d, p, l
}

func TestLogLinkValidation(t *testing.T) {
	ws := setupWorkspace(t)

	var verr *ValidationError
	_, err := ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: "1",
		TargetItemType: models.ItemTypeProgressEntry, TargetItemID: "2",
	})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError without relationship_type, got %v", err)
	}

	_, err = ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision,
		TargetItemType: models.ItemTypeProgressEntry, TargetItemID: "2",
		RelationshipType: "r",
	})
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError without source id, got %v", err)
	}
}

func TestGetLinksForItemUndirected(t *testing.T) {
	ws := setupWorkspace(t)
	d, p, l := linkDecisionToProgress(t, ws)

	// The same link surfaces from either endpoint.
	fromSource, err := ws.GetLinksForItem(LinkQuery{
		ItemType: models.ItemTypeDecision, ItemID: strconv.FormatInt(d.ID, 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	fromTarget, err := ws.GetLinksForItem(LinkQuery{
		ItemType: models.ItemTypeProgressEntry, ItemID: strconv.FormatInt(p.ID, 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(fromSource) != 1 || fromSource[0].ID != l.ID {
		t.Errorf("Source query: expected the link, got %v", fromSource)
	}
	if len(fromTarget) != 1 || fromTarget[0].ID != l.ID {
		t.Errorf("Target query: expected the link, got %v", fromTarget)
	}
}

func TestGetLinksForItemFilters(t *testing.T) {
	ws := setupWorkspace(t)
	d, _, _ := linkDecisionToProgress(t, ws)
	dID := strconv.FormatInt(d.ID, 10)

	pat, _ := ws.LogSystemPattern(models.SystemPattern{Name: "Trigger Sync"})
	ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: dID,
		TargetItemType: models.ItemTypeSystemPattern, TargetItemID: strconv.FormatInt(pat.ID, 10),
		RelationshipType: "applies",
	})

	all, err := ws.GetLinksForItem(LinkQuery{ItemType: models.ItemTypeDecision, ItemID: dID})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(all))
	}

	byRel, err := ws.GetLinksForItem(LinkQuery{
		ItemType: models.ItemTypeDecision, ItemID: dID, RelationshipType: "applies",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(byRel) != 1 || byRel[0].RelationshipType != "applies" {
		t.Errorf("Relationship filter: got %v", byRel)
	}

	byType, err := ws.GetLinksForItem(LinkQuery{
		ItemType: models.ItemTypeDecision, ItemID: dID, LinkedItemType: models.ItemTypeProgressEntry,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 1 || byType[0].TargetItemType != models.ItemTypeProgressEntry {
		t.Errorf("Linked-type filter: got %v", byType)
	}
}

func TestGetLinksForItemCustomDataAlternateID(t *testing.T) {
	ws := setupWorkspace(t)

	cd, err := ws.LogCustomData(models.CustomData{Category: "ProjectGlossary", Key: "apikey", Value: "secret handle"})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := ws.LogDecision(models.Decision{Summary: "Rotate credentials quarterly"})

	// Link recorded under the composite key form.
	if _, err := ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: strconv.FormatInt(d.ID, 10),
		TargetItemType: models.ItemTypeCustomData, TargetItemID: "ProjectGlossary:apikey",
		RelationshipType: "defines",
	}); err != nil {
		t.Fatal(err)
	}

	// A query by the numeric surrogate ID must still find it.
	links, err := ws.GetLinksForItem(LinkQuery{
		ItemType: models.ItemTypeCustomData, ItemID: strconv.FormatInt(cd.ID, 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 {
		t.Fatalf("Expected the composite-key link via surrogate ID, got %d links", len(links))
	}
}

func TestGetLinksForItemCustomDataCompositeQuery(t *testing.T) {
	ws := setupWorkspace(t)

	cd, err := ws.LogCustomData(models.CustomData{Category: "ProjectGlossary", Key: "apikey", Value: "secret handle"})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := ws.LogDecision(models.Decision{Summary: "Rotate credentials quarterly"})

	// Link recorded under the numeric surrogate ID.
	if _, err := ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: strconv.FormatInt(d.ID, 10),
		TargetItemType: models.ItemTypeCustomData, TargetItemID: strconv.FormatInt(cd.ID, 10),
		RelationshipType: "defines",
	}); err != nil {
		t.Fatal(err)
	}

	// Queries by any composite form must still find it.
	for _, id := range []string{"ProjectGlossary:apikey", "ProjectGlossary::apikey", "ProjectGlossary/apikey"} {
		links, err := ws.GetLinksForItem(LinkQuery{
			ItemType: models.ItemTypeCustomData, ItemID: id,
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(links) != 1 {
			t.Fatalf("Expected the surrogate-ID link via %q, got %d links", id, len(links))
		}
	}
}

func TestUpdateLink(t *testing.T) {
	ws := setupWorkspace(t)
	_, _, l := linkDecisionToProgress(t, ws)

	rel := "implemented_by"
	found, err := ws.UpdateLink(LinkUpdate{ID: l.ID, RelationshipType: &rel})
	if err != nil {
		t.Fatalf("UpdateLink: %v", err)
	}
	if !found {
		t.Fatal("Expected update to find the link")
	}

	links, _ := ws.GetLinksForItem(LinkQuery{ItemType: models.ItemTypeDecision, ItemID: l.SourceItemID})
	if links[0].RelationshipType != "implemented_by" {
		t.Errorf("RelationshipType = %q, want updated value", links[0].RelationshipType)
	}

	var verr *ValidationError
	if _, err := ws.UpdateLink(LinkUpdate{ID: l.ID}); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for empty link update, got %v", err)
	}
}

func TestDeleteLink(t *testing.T) {
	ws := setupWorkspace(t)
	_, _, l := linkDecisionToProgress(t, ws)

	found, err := ws.DeleteLink(l.ID)
	if err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if !found {
		t.Fatal("Expected delete to find the link")
	}
	found, _ = ws.DeleteLink(l.ID)
	if found {
		t.Error("Second delete should report found=false")
	}
}

func TestEntityDeletionCleansLinks(t *testing.T) {
	ws := setupWorkspace(t)
	_, p, _ := linkDecisionToProgress(t, ws)

	pat, _ := ws.LogSystemPattern(models.SystemPattern{Name: "Cleanup"})
	patID := strconv.FormatInt(pat.ID, 10)
	ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeProgressEntry, SourceItemID: strconv.FormatInt(p.ID, 10),
		TargetItemType: models.ItemTypeSystemPattern, TargetItemID: patID,
		RelationshipType: "follows",
	})

	if _, err := ws.DeleteProgress(p.ID); err != nil {
		t.Fatal(err)
	}

	// Both links touching the deleted entry are gone; the pattern keeps
	// no dangling references.
	links, err := ws.GetLinksForItem(LinkQuery{ItemType: models.ItemTypeSystemPattern, ItemID: patID})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("Expected trigger cleanup to remove links, got %v", links)
	}
}

func TestCustomDataDeletionCleansBothLinkForms(t *testing.T) {
	ws := setupWorkspace(t)

	cd, _ := ws.LogCustomData(models.CustomData{Category: "Runbooks", Key: "deploy", Value: "steps"})
	d, _ := ws.LogDecision(models.Decision{Summary: "Document deploys"})
	dID := strconv.FormatInt(d.ID, 10)

	ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: dID,
		TargetItemType: models.ItemTypeCustomData, TargetItemID: strconv.FormatInt(cd.ID, 10),
		RelationshipType: "documents",
	})
	ws.LogLink(models.ContextLink{
		SourceItemType: models.ItemTypeDecision, SourceItemID: dID,
		TargetItemType: models.ItemTypeCustomData, TargetItemID: "Runbooks:deploy",
		RelationshipType: "documents",
	})

	if _, err := ws.DeleteCustomData("Runbooks", "deploy"); err != nil {
		t.Fatal(err)
	}

	links, err := ws.GetLinksForItem(LinkQuery{ItemType: models.ItemTypeDecision, ItemID: dID})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("Expected links under both ID forms removed, got %v", links)
	}
}
