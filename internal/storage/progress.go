package storage

import (
	"database/sql"
	"strings"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// ProgressFilter narrows GetProgress. Limit <= 0 means no cap.
type ProgressFilter struct {
	Status   string
	ParentID *int64
	Limit    int
}

// ProgressUpdate carries a partial update. Nil fields are left untouched;
// ClearParent detaches the entry from its parent (parent_id = NULL) and
// takes precedence over ParentID.
type ProgressUpdate struct {
	ID          int64
	Status      *string
	Description *string
	ParentID    *int64
	ClearParent bool
}

// LogProgress inserts a new progress entry.
func (w *WorkspaceStore) LogProgress(p models.ProgressEntry) (models.ProgressEntry, error) {
	if p.Description == "" {
		return p, validationErr("description is required")
	}
	if p.Status == "" {
		return p, validationErr("status is required")
	}
	err := w.db.QueryRow(
		`INSERT INTO progress_entries (status, description, parent_id)
		 VALUES (?, ?, ?)
		 RETURNING id, timestamp`,
		p.Status, p.Description, p.ParentID,
	).Scan(&p.ID, &p.Timestamp)
	if err != nil {
		return p, opErr("log progress entry", err)
	}
	return p, nil
}

// GetProgress retrieves progress entries newest first, optionally filtered
// by status and/or parent.
func (w *WorkspaceStore) GetProgress(f ProgressFilter) ([]models.ProgressEntry, error) {
	query := `SELECT id, timestamp, status, description, parent_id FROM progress_entries`
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ParentID != nil {
		conds = append(conds, "parent_id = ?")
		args = append(args, *f.ParentID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get progress entries", err)
	}
	defer rows.Close()

	var entries []models.ProgressEntry
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// GetProgressEntry retrieves a single entry by ID, or ErrNotFound.
func (w *WorkspaceStore) GetProgressEntry(id int64) (models.ProgressEntry, error) {
	row := w.db.QueryRow(
		`SELECT id, timestamp, status, description, parent_id FROM progress_entries WHERE id = ?`, id,
	)
	p, err := scanProgress(row)
	if err == sql.ErrNoRows {
		return models.ProgressEntry{}, ErrNotFound
	}
	return p, err
}

// UpdateProgress applies a partial update. Returns false when the ID does
// not exist.
func (w *WorkspaceStore) UpdateProgress(u ProgressUpdate) (bool, error) {
	var sets []string
	var args []any
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.ClearParent {
		sets = append(sets, "parent_id = NULL")
	} else if u.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *u.ParentID)
	}
	if len(sets) == 0 {
		return false, validationErr("no fields provided for update")
	}

	args = append(args, u.ID)
	result, err := w.db.Exec(
		`UPDATE progress_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return false, opErr("update progress entry", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteProgress removes a progress entry by ID. Children are reparented
// to root (parent_id set NULL by the foreign key), never deleted; links
// mentioning the entry are removed by trigger.
func (w *WorkspaceStore) DeleteProgress(id int64) (bool, error) {
	result, err := w.db.Exec(`DELETE FROM progress_entries WHERE id = ?`, id)
	if err != nil {
		return false, opErr("delete progress entry", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SearchProgress runs an FTS5 query over status and description, ranked by
// relevance. Limit <= 0 means no cap.
func (w *WorkspaceStore) SearchProgress(term string, limit int) ([]models.ProgressEntry, error) {
	query := `SELECT p.id, p.timestamp, p.status, p.description, p.parent_id
		 FROM progress_entries_fts f
		 JOIN progress_entries p ON f.rowid = p.id
		 WHERE progress_entries_fts MATCH ? ORDER BY rank`
	args := []any{term}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("search progress entries", err)
	}
	defer rows.Close()

	var entries []models.ProgressEntry
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

func scanProgress(row rowScanner) (models.ProgressEntry, error) {
	var p models.ProgressEntry
	var parent sql.NullInt64
	err := row.Scan(&p.ID, &p.Timestamp, &p.Status, &p.Description, &parent)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, opErr("scan progress entry", err)
	}
	if parent.Valid {
		p.ParentID = &parent.Int64
	}
	return p, nil
}
