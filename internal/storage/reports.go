package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// ActivityQuery bounds a recent-activity summary. Since takes precedence
// over HoursAgo; with neither set the window covers the last 24 hours.
// LimitPerType <= 0 means no per-kind cap.
type ActivityQuery struct {
	Since        string
	HoursAgo     int
	LimitPerType int
}

// GetRecentActivity collects items created or changed inside the query
// window, newest first, each kind capped independently.
func (w *WorkspaceStore) GetRecentActivity(q ActivityQuery) (models.ActivitySummary, error) {
	since := q.Since
	if since == "" {
		hours := q.HoursAgo
		if hours <= 0 {
			hours = 24
		}
		since = formatTimestamp(utcNow().Add(-time.Duration(hours) * time.Hour))
	}

	summary := models.ActivitySummary{
		PeriodStart: since,
		PeriodEnd:   formatTimestamp(utcNow()),
	}

	var err error
	if summary.Decisions, err = w.recentDecisions(since, q.LimitPerType); err != nil {
		return summary, err
	}
	if summary.ProgressEntries, err = w.recentProgress(since, q.LimitPerType); err != nil {
		return summary, err
	}
	if summary.SystemPatterns, err = w.recentPatterns(since, q.LimitPerType); err != nil {
		return summary, err
	}
	if summary.ProductContextUpdates, err = w.GetItemHistory(HistoryQuery{
		ItemType:       models.ItemTypeProductContext,
		AfterTimestamp: since,
		Limit:          q.LimitPerType,
	}); err != nil {
		return summary, err
	}
	if summary.ActiveContextUpdates, err = w.GetItemHistory(HistoryQuery{
		ItemType:       models.ItemTypeActiveContext,
		AfterTimestamp: since,
		Limit:          q.LimitPerType,
	}); err != nil {
		return summary, err
	}
	if summary.Links, err = w.recentLinks(since, q.LimitPerType); err != nil {
		return summary, err
	}
	return summary, nil
}

func (w *WorkspaceStore) recentDecisions(since string, limit int) ([]models.Decision, error) {
	query := `SELECT id, timestamp, summary, rationale, implementation_details, tags
		 FROM decisions WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get recent decisions", err)
	}
	defer rows.Close()

	var items []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (w *WorkspaceStore) recentProgress(since string, limit int) ([]models.ProgressEntry, error) {
	query := `SELECT id, timestamp, status, description, parent_id
		 FROM progress_entries WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get recent progress entries", err)
	}
	defer rows.Close()

	var items []models.ProgressEntry
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (w *WorkspaceStore) recentPatterns(since string, limit int) ([]models.SystemPattern, error) {
	query := `SELECT id, timestamp, name, description, tags
		 FROM system_patterns WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get recent system patterns", err)
	}
	defer rows.Close()

	var items []models.SystemPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (w *WorkspaceStore) recentLinks(since string, limit int) ([]models.ContextLink, error) {
	query := `SELECT id, timestamp, source_item_type, source_item_id,
		        target_item_type, target_item_id, relationship_type, description
		 FROM context_links WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get recent context links", err)
	}
	defer rows.Close()

	var items []models.ContextLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// ResolveReferences fetches the current state of every referenced item.
// Exactly one of refs or links must be supplied; links contribute both of
// their endpoints. Duplicates are collapsed case-insensitively, first
// occurrence wins. Each reference resolves independently: a missing or
// malformed one yields a failed entry in the result, never an error for
// the whole batch.
func (w *WorkspaceStore) ResolveReferences(refs []models.ItemReference, links []models.ContextLink) ([]models.ResolvedItem, error) {
	if (len(refs) == 0) == (len(links) == 0) {
		return nil, validationErr("exactly one of references or links must be provided")
	}
	if len(links) > 0 {
		for _, l := range links {
			refs = append(refs,
				models.ItemReference{Type: l.SourceItemType, ID: l.SourceItemID},
				models.ItemReference{Type: l.TargetItemType, ID: l.TargetItemID})
		}
	}

	seen := make(map[string]bool, len(refs))
	results := make([]models.ResolvedItem, 0, len(refs))
	for _, ref := range refs {
		dedupKey := strings.ToLower(ref.Type) + "\x00" + strings.ToLower(ref.ID)
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true
		results = append(results, w.resolveReference(ref))
	}
	return results, nil
}

func (w *WorkspaceStore) resolveReference(ref models.ItemReference) models.ResolvedItem {
	result := models.ResolvedItem{Reference: ref}

	fail := func(msg string) models.ResolvedItem {
		result.Error = msg
		return result
	}
	ok := func(item any) models.ResolvedItem {
		result.Success = true
		result.Item = item
		return result
	}

	switch ref.Type {
	case models.ItemTypeDecision:
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("invalid decision ID %q", ref.ID))
		}
		d, err := w.GetDecision(id)
		if errors.Is(err, ErrNotFound) {
			return fail(fmt.Sprintf("Decision with ID %d not found", id))
		}
		if err != nil {
			return fail(err.Error())
		}
		return ok(d)

	case models.ItemTypeProgressEntry:
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("invalid progress entry ID %q", ref.ID))
		}
		p, err := w.GetProgressEntry(id)
		if errors.Is(err, ErrNotFound) {
			return fail(fmt.Sprintf("Progress entry with ID %d not found", id))
		}
		if err != nil {
			return fail(err.Error())
		}
		return ok(p)

	case models.ItemTypeSystemPattern:
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("invalid system pattern ID %q", ref.ID))
		}
		p, err := w.GetSystemPattern(id)
		if errors.Is(err, ErrNotFound) {
			return fail(fmt.Sprintf("System pattern with ID %d not found", id))
		}
		if err != nil {
			return fail(err.Error())
		}
		return ok(p)

	case models.ItemTypeCustomData:
		cd, err := w.resolveCustomDataRef(ref.ID)
		if errors.Is(err, ErrNotFound) {
			return fail(fmt.Sprintf("Custom data %q not found", ref.ID))
		}
		if err != nil {
			return fail(err.Error())
		}
		return ok(cd)

	case models.ItemTypeProductContext:
		ctx, err := w.GetProductContext()
		if err != nil {
			return fail(err.Error())
		}
		return ok(ctx)

	case models.ItemTypeActiveContext:
		ctx, err := w.GetActiveContext()
		if err != nil {
			return fail(err.Error())
		}
		return ok(ctx)

	default:
		return fail(fmt.Sprintf("unsupported item type %q", ref.Type))
	}
}

// resolveCustomDataRef accepts the ID shapes links and references use for
// custom data: a numeric surrogate ID, "category::key", "category:key",
// "category/key", or a bare key. Composite and bare-key lookups return
// the newest match.
func (w *WorkspaceStore) resolveCustomDataRef(id string) (models.CustomData, error) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return w.GetCustomDataByID(n)
	}

	for _, sep := range []string{"::", ":", "/"} {
		category, key, found := strings.Cut(id, sep)
		if !found || category == "" || key == "" {
			continue
		}
		items, err := w.GetCustomData(category, key)
		if err != nil {
			return models.CustomData{}, err
		}
		if len(items) > 0 {
			return items[0], nil
		}
	}

	// Bare key, category unknown. Take the newest entry under that key.
	rows, err := w.db.Query(
		`SELECT id, timestamp, category, key, value FROM custom_data
		 WHERE key = ? ORDER BY id DESC LIMIT 1`, id)
	if err != nil {
		return models.CustomData{}, opErr("resolve custom data reference", err)
	}
	defer rows.Close()

	items, err := collectCustomData(rows)
	if err != nil {
		return models.CustomData{}, err
	}
	if len(items) == 0 {
		return models.CustomData{}, ErrNotFound
	}
	return items[0], nil
}
