package storage

import (
	"database/sql"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// PatternFilter narrows GetSystemPatterns. TagsAll and TagsAny are
// mutually exclusive; Limit <= 0 means no cap.
type PatternFilter struct {
	Limit   int
	TagsAll []string
	TagsAny []string
}

// LogSystemPattern inserts or updates a pattern keyed by its name. The
// conditional insert is a single atomic statement: a name collision
// updates the existing row in place, preserving its ID and every link
// that references it. Two concurrent writers under the same name can
// never produce two rows.
func (w *WorkspaceStore) LogSystemPattern(p models.SystemPattern) (models.SystemPattern, error) {
	if p.Name == "" {
		return p, validationErr("name is required")
	}
	err := w.db.QueryRow(
		`INSERT INTO system_patterns (timestamp, name, description, tags)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     timestamp = excluded.timestamp,
		     description = excluded.description,
		     tags = excluded.tags
		 RETURNING id, timestamp`,
		formatTimestamp(utcNow()), p.Name, p.Description, encodeTags(p.Tags),
	).Scan(&p.ID, &p.Timestamp)
	if err != nil {
		return p, opErr("log system pattern", err)
	}
	return p, nil
}

// GetSystemPatterns retrieves patterns ordered by name. Tag filters use
// the shared post-retrieval containment semantics.
func (w *WorkspaceStore) GetSystemPatterns(f PatternFilter) ([]models.SystemPattern, error) {
	if err := validateTagFilters(f.TagsAll, f.TagsAny); err != nil {
		return nil, err
	}

	query := `SELECT id, timestamp, name, description, tags FROM system_patterns ORDER BY name ASC`
	var args []any
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get system patterns", err)
	}
	defer rows.Close()

	var patterns []models.SystemPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("get system patterns", err)
	}
	return filterByTags(patterns, f.TagsAll, f.TagsAny, func(p models.SystemPattern) []string { return p.Tags }), nil
}

// GetSystemPattern retrieves a single pattern by ID, or ErrNotFound.
func (w *WorkspaceStore) GetSystemPattern(id int64) (models.SystemPattern, error) {
	row := w.db.QueryRow(
		`SELECT id, timestamp, name, description, tags FROM system_patterns WHERE id = ?`, id,
	)
	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return models.SystemPattern{}, ErrNotFound
	}
	return p, err
}

// DeleteSystemPattern removes a pattern by ID. Returns false when the ID
// does not exist.
func (w *WorkspaceStore) DeleteSystemPattern(id int64) (bool, error) {
	result, err := w.db.Exec(`DELETE FROM system_patterns WHERE id = ?`, id)
	if err != nil {
		return false, opErr("delete system pattern", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SearchSystemPatterns runs an FTS5 query over name, description and tags,
// ranked by relevance. Limit <= 0 means no cap.
func (w *WorkspaceStore) SearchSystemPatterns(term string, limit int) ([]models.SystemPattern, error) {
	query := `SELECT sp.id, sp.timestamp, sp.name, sp.description, sp.tags
		 FROM system_patterns_fts f
		 JOIN system_patterns sp ON f.rowid = sp.id
		 WHERE system_patterns_fts MATCH ? ORDER BY rank`
	args := []any{term}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("search system patterns", err)
	}
	defer rows.Close()

	var patterns []models.SystemPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func scanPattern(row rowScanner) (models.SystemPattern, error) {
	var p models.SystemPattern
	var tags sql.NullString
	err := row.Scan(&p.ID, &p.Timestamp, &p.Name, &p.Description, &tags)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, opErr("scan system pattern", err)
	}
	p.Tags = decodeTags(tags)
	return p, nil
}
