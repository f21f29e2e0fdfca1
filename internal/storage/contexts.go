package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// DeleteSentinel removes a key from a context when supplied as that key's
// value in a patch.
const DeleteSentinel = "__DELETE__"

// ContextUpdate carries a context mutation. Exactly one of Content (full
// replacement) or PatchContent (shallow merge with DeleteSentinel support)
// must be set.
type ContextUpdate struct {
	Content      map[string]any
	PatchContent map[string]any
	ChangeSource string
}

// HistoryQuery narrows GetItemHistory. ItemType is required; Limit <= 0
// means no cap.
type HistoryQuery struct {
	ItemType        string
	Version         *int64
	BeforeTimestamp string
	AfterTimestamp  string
	Limit           int
}

// GetProductContext returns the product context. The singleton row is
// provisioned at workspace creation; its absence is a storage fault, not
// an empty result.
func (w *WorkspaceStore) GetProductContext() (models.Context, error) {
	return w.getContext("product_context")
}

// GetActiveContext returns the active context.
func (w *WorkspaceStore) GetActiveContext() (models.Context, error) {
	return w.getContext("active_context")
}

// UpdateProductContext replaces or patches the product context, writing
// the pre-update content to history first.
func (w *WorkspaceStore) UpdateProductContext(u ContextUpdate) error {
	return w.updateContext("product_context", "product_context_history", "update_product_context", u)
}

// UpdateActiveContext replaces or patches the active context.
func (w *WorkspaceStore) UpdateActiveContext(u ContextUpdate) error {
	return w.updateContext("active_context", "active_context_history", "update_active_context", u)
}

func (w *WorkspaceStore) getContext(table string) (models.Context, error) {
	var c models.Context
	var raw string
	err := w.db.QueryRow(`SELECT id, content FROM ` + table + ` WHERE id = 1`).Scan(&c.ID, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return c, opErr("get "+table, errors.New("context row not found"))
	}
	if err != nil {
		return c, opErr("get "+table, err)
	}
	if err := json.Unmarshal([]byte(raw), &c.Content); err != nil {
		return c, opErr("get "+table, err)
	}
	return c, nil
}

// updateContext runs the snapshot-then-mutate protocol in one transaction:
// read current content, append it to history as version max+1, compute the
// new content, write the singleton row. A missing row aborts before any
// history write.
func (w *WorkspaceStore) updateContext(table, historyTable, defaultSource string, u ContextUpdate) error {
	if (u.Content == nil) == (u.PatchContent == nil) {
		return validationErr("exactly one of content or patch_content must be provided")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return opErr("update "+table+": begin", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRow(`SELECT content FROM ` + table + ` WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return opErr("update "+table, errors.New("context row not found"))
	}
	if err != nil {
		return opErr("update "+table, err)
	}
	var current map[string]any
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return opErr("update "+table, err)
	}

	var maxVersion sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(version) FROM ` + historyTable).Scan(&maxVersion); err != nil {
		return opErr("update "+table+": read history version", err)
	}

	source := u.ChangeSource
	if source == "" {
		source = defaultSource
	}
	if _, err := tx.Exec(
		`INSERT INTO `+historyTable+` (version, content, change_source) VALUES (?, ?, ?)`,
		maxVersion.Int64+1, raw, source,
	); err != nil {
		return opErr("update "+table+": write history", err)
	}

	next := u.Content
	if u.PatchContent != nil {
		next = make(map[string]any, len(current)+len(u.PatchContent))
		for k, v := range current {
			next[k] = v
		}
		for k, v := range u.PatchContent {
			if s, ok := v.(string); ok && s == DeleteSentinel {
				delete(next, k)
				continue
			}
			next[k] = v
		}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return opErr("update "+table, err)
	}
	if _, err := tx.Exec(`UPDATE `+table+` SET content = ? WHERE id = 1`, string(data)); err != nil {
		return opErr("update "+table, err)
	}

	if err := tx.Commit(); err != nil {
		return opErr("update "+table+": commit", err)
	}
	w.log.Debug().Str("table", table).Str("change_source", source).Msg("context updated")
	return nil
}

// GetItemHistory retrieves context snapshots newest first, optionally
// narrowed to one version or a timestamp window.
func (w *WorkspaceStore) GetItemHistory(q HistoryQuery) ([]models.ContextHistoryEntry, error) {
	var table string
	switch q.ItemType {
	case models.ItemTypeProductContext:
		table = "product_context_history"
	case models.ItemTypeActiveContext:
		table = "active_context_history"
	default:
		return nil, validationErr("item_type must be %q or %q", models.ItemTypeProductContext, models.ItemTypeActiveContext)
	}

	query := `SELECT id, timestamp, version, content, change_source FROM ` + table
	var conds []string
	var args []any
	if q.Version != nil {
		conds = append(conds, "version = ?")
		args = append(args, *q.Version)
	}
	if q.BeforeTimestamp != "" {
		conds = append(conds, "timestamp < ?")
		args = append(args, q.BeforeTimestamp)
	}
	if q.AfterTimestamp != "" {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.AfterTimestamp)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY version DESC, timestamp DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get "+q.ItemType+" history", err)
	}
	defer rows.Close()

	var entries []models.ContextHistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SearchContexts runs an FTS5 query over both context documents, ranked
// by relevance, optionally scoped to "product" or "active". Limit <= 0
// means no cap.
func (w *WorkspaceStore) SearchContexts(term, contextTypeFilter string, limit int) ([]models.ContextSearchResult, error) {
	query := `SELECT rowid, context_type, content_text FROM context_fts WHERE context_fts MATCH ?`
	args := []any{term}
	if contextTypeFilter != "" {
		query += " AND context_type = ?"
		args = append(args, contextTypeFilter)
	}
	query += " ORDER BY rank"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("search contexts", err)
	}
	defer rows.Close()

	var results []models.ContextSearchResult
	for rows.Next() {
		var r models.ContextSearchResult
		var raw string
		if err := rows.Scan(&r.ID, &r.ContextType, &raw); err != nil {
			return nil, opErr("scan context search result", err)
		}
		if err := json.Unmarshal([]byte(raw), &r.Content); err != nil {
			w.log.Warn().Err(err).Int64("rowid", r.ID).Msg("skipping context search hit with bad JSON")
			continue
		}
		r.Snippet = snippet(raw, 200)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanHistoryEntry(row rowScanner) (models.ContextHistoryEntry, error) {
	var e models.ContextHistoryEntry
	var raw string
	if err := row.Scan(&e.ID, &e.Timestamp, &e.Version, &raw, &e.ChangeSource); err != nil {
		return e, opErr("scan context history entry", err)
	}
	if err := json.Unmarshal([]byte(raw), &e.Content); err != nil {
		return e, opErr("decode context history content", err)
	}
	return e, nil
}

// snippet truncates to at most max bytes without splitting a rune.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
