package storage

import (
	"database/sql"
	"strings"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// DecisionFilter narrows GetDecisions. TagsAll and TagsAny are mutually
// exclusive; Limit <= 0 means no cap.
type DecisionFilter struct {
	Limit   int
	TagsAll []string
	TagsAny []string
}

// DecisionUpdate carries a partial update. Nil fields are left untouched.
type DecisionUpdate struct {
	ID                    int64
	Summary               *string
	Rationale             *string
	ImplementationDetails *string
	Tags                  *[]string
}

// LogDecision inserts a new decision and returns it with its assigned ID
// and timestamp.
func (w *WorkspaceStore) LogDecision(d models.Decision) (models.Decision, error) {
	if d.Summary == "" {
		return d, validationErr("summary is required")
	}
	err := w.db.QueryRow(
		`INSERT INTO decisions (summary, rationale, implementation_details, tags)
		 VALUES (?, ?, ?, ?)
		 RETURNING id, timestamp`,
		d.Summary, d.Rationale, d.ImplementationDetails, encodeTags(d.Tags),
	).Scan(&d.ID, &d.Timestamp)
	if err != nil {
		return d, opErr("log decision", err)
	}
	return d, nil
}

// GetDecisions retrieves decisions newest first. Tag filters are evaluated
// over the normalized tag list after row retrieval, so the limit applies
// to rows fetched, not rows surviving the filter.
func (w *WorkspaceStore) GetDecisions(f DecisionFilter) ([]models.Decision, error) {
	if err := validateTagFilters(f.TagsAll, f.TagsAny); err != nil {
		return nil, err
	}

	query := `SELECT id, timestamp, summary, rationale, implementation_details, tags
		 FROM decisions ORDER BY timestamp DESC, id DESC`
	var args []any
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get decisions", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("get decisions", err)
	}
	return filterByTags(decisions, f.TagsAll, f.TagsAny, func(d models.Decision) []string { return d.Tags }), nil
}

// GetDecision retrieves a single decision by ID, or ErrNotFound.
func (w *WorkspaceStore) GetDecision(id int64) (models.Decision, error) {
	row := w.db.QueryRow(
		`SELECT id, timestamp, summary, rationale, implementation_details, tags
		 FROM decisions WHERE id = ?`, id,
	)
	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return models.Decision{}, ErrNotFound
	}
	return d, err
}

// UpdateDecision applies a partial update. Returns false when the ID does
// not exist.
func (w *WorkspaceStore) UpdateDecision(u DecisionUpdate) (bool, error) {
	var sets []string
	var args []any
	if u.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *u.Summary)
	}
	if u.Rationale != nil {
		sets = append(sets, "rationale = ?")
		args = append(args, *u.Rationale)
	}
	if u.ImplementationDetails != nil {
		sets = append(sets, "implementation_details = ?")
		args = append(args, *u.ImplementationDetails)
	}
	if u.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, encodeTags(*u.Tags))
	}
	if len(sets) == 0 {
		return false, validationErr("no fields provided for update")
	}

	args = append(args, u.ID)
	result, err := w.db.Exec(
		`UPDATE decisions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return false, opErr("update decision", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteDecision removes a decision by ID. Link cleanup is handled by the
// database trigger. Returns false when the ID does not exist.
func (w *WorkspaceStore) DeleteDecision(id int64) (bool, error) {
	result, err := w.db.Exec(`DELETE FROM decisions WHERE id = ?`, id)
	if err != nil {
		return false, opErr("delete decision", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SearchDecisions runs an FTS5 query over summary, rationale,
// implementation details and tags, ranked by relevance. Limit <= 0 means
// no cap.
func (w *WorkspaceStore) SearchDecisions(term string, limit int) ([]models.Decision, error) {
	query := `SELECT d.id, d.timestamp, d.summary, d.rationale, d.implementation_details, d.tags
		 FROM decisions_fts f
		 JOIN decisions d ON f.rowid = d.id
		 WHERE decisions_fts MATCH ? ORDER BY rank`
	args := []any{term}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("search decisions", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (models.Decision, error) {
	var d models.Decision
	var tags sql.NullString
	err := row.Scan(&d.ID, &d.Timestamp, &d.Summary, &d.Rationale, &d.ImplementationDetails, &tags)
	if err == sql.ErrNoRows {
		return d, err
	}
	if err != nil {
		return d, opErr("scan decision", err)
	}
	d.Tags = decodeTags(tags)
	return d, nil
}

// filterByTags applies the post-retrieval containment semantics shared by
// every tag-carrying entity store.
func filterByTags[T any](items []T, all, anyOf []string, tags func(T) []string) []T {
	if len(all) == 0 && len(anyOf) == 0 {
		return items
	}
	var out []T
	for _, item := range items {
		t := tags(item)
		if len(all) > 0 && !hasAllTags(t, all) {
			continue
		}
		if len(anyOf) > 0 && !hasAnyTag(t, anyOf) {
			continue
		}
		out = append(out, item)
	}
	return out
}
