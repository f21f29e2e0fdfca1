package storage

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// GlossaryCategory is the custom-data category holding project glossary
// entries, exposed through a dedicated scoped search.
const GlossaryCategory = "ProjectGlossary"

// LogCustomData inserts or updates an entry keyed by category+key. Like
// patterns, the conditional insert is one atomic statement preserving the
// row's ID and links on collision.
func (w *WorkspaceStore) LogCustomData(d models.CustomData) (models.CustomData, error) {
	if d.Category == "" {
		return d, validationErr("category is required")
	}
	if d.Key == "" {
		return d, validationErr("key is required")
	}
	value, err := json.Marshal(d.Value)
	if err != nil {
		return d, validationErr("value is not JSON-serializable: %v", err)
	}

	err = w.db.QueryRow(
		`INSERT INTO custom_data (timestamp, category, key, value)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(category, key) DO UPDATE SET
		     timestamp = excluded.timestamp,
		     value = excluded.value
		 RETURNING id, timestamp`,
		formatTimestamp(utcNow()), d.Category, d.Key, string(value),
	).Scan(&d.ID, &d.Timestamp)
	if err != nil {
		return d, opErr("log custom data", err)
	}
	return d, nil
}

// GetCustomData retrieves entries ordered by category then key. Filtering
// by key requires a category.
func (w *WorkspaceStore) GetCustomData(category, key string) ([]models.CustomData, error) {
	if key != "" && category == "" {
		return nil, validationErr("cannot filter by key without specifying a category")
	}

	query := `SELECT id, timestamp, category, key, value FROM custom_data`
	var conds []string
	var args []any
	if category != "" {
		conds = append(conds, "category = ?")
		args = append(args, category)
	}
	if key != "" {
		conds = append(conds, "key = ?")
		args = append(args, key)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY category ASC, key ASC"

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get custom data", err)
	}
	defer rows.Close()
	return collectCustomData(rows)
}

// GetCustomDataByID retrieves one entry by its surrogate ID, or
// ErrNotFound. The link store uses this to widen composite-key matching.
func (w *WorkspaceStore) GetCustomDataByID(id int64) (models.CustomData, error) {
	row := w.db.QueryRow(
		`SELECT id, timestamp, category, key, value FROM custom_data WHERE id = ?`, id,
	)
	d, err := scanCustomData(row)
	if err == sql.ErrNoRows {
		return models.CustomData{}, ErrNotFound
	}
	return d, err
}

// GetAllCustomDataByIDDesc retrieves entries newest first by surrogate ID.
// Limit <= 0 means no cap.
func (w *WorkspaceStore) GetAllCustomDataByIDDesc(limit int) ([]models.CustomData, error) {
	query := `SELECT id, timestamp, category, key, value FROM custom_data ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get custom data by id", err)
	}
	defer rows.Close()
	return collectCustomData(rows)
}

// DeleteCustomData removes an entry by its natural key. Links in either
// addressing convention are removed by trigger. Returns false when the
// key does not exist.
func (w *WorkspaceStore) DeleteCustomData(category, key string) (bool, error) {
	result, err := w.db.Exec(
		`DELETE FROM custom_data WHERE category = ? AND key = ?`, category, key,
	)
	if err != nil {
		return false, opErr("delete custom data", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SearchCustomDataValue runs an FTS5 query over category, key and value,
// ranked by relevance, optionally scoped to one category. Limit <= 0
// means no cap.
func (w *WorkspaceStore) SearchCustomDataValue(term, categoryFilter string, limit int) ([]models.CustomData, error) {
	query := `SELECT cd.id, cd.timestamp, cd.category, cd.key, cd.value
		 FROM custom_data_fts f
		 JOIN custom_data cd ON f.rowid = cd.id
		 WHERE custom_data_fts MATCH ?`
	args := []any{term}
	if categoryFilter != "" {
		query += " AND cd.category = ?"
		args = append(args, categoryFilter)
	}
	query += " ORDER BY rank"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("search custom data", err)
	}
	defer rows.Close()
	return collectCustomData(rows)
}

// SearchProjectGlossary is the value search scoped to the glossary
// category.
func (w *WorkspaceStore) SearchProjectGlossary(term string, limit int) ([]models.CustomData, error) {
	return w.SearchCustomDataValue(term, GlossaryCategory, limit)
}

func collectCustomData(rows *sql.Rows) ([]models.CustomData, error) {
	var out []models.CustomData
	for rows.Next() {
		d, err := scanCustomData(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanCustomData(row rowScanner) (models.CustomData, error) {
	var d models.CustomData
	var raw string
	err := row.Scan(&d.ID, &d.Timestamp, &d.Category, &d.Key, &raw)
	if err == sql.ErrNoRows {
		return d, err
	}
	if err != nil {
		return d, opErr("scan custom data", err)
	}
	if err := json.Unmarshal([]byte(raw), &d.Value); err != nil {
		// Pre-JSON rows are surfaced as their raw text rather than dropped.
		d.Value = raw
	}
	return d, nil
}
