package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rs/zerolog"
)

// timeLayout matches SQLite's datetime('now') output. Timestamps are
// stored as UTC text in this fixed layout so lexicographic comparison in
// SQL agrees with chronological order.
const timeLayout = "2006-01-02 15:04:05"

// WorkspaceStore is the knowledge base of a single workspace: entity
// tables, singleton contexts with history, links, and the FTS shadow
// indexes the database keeps in sync by trigger.
type WorkspaceStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenWorkspace opens a workspace database, creating the schema, triggers
// and seeded singleton rows if they do not exist yet.
func OpenWorkspace(dbPath string, logger zerolog.Logger) (*WorkspaceStore, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)")
	if err != nil {
		return nil, fmt.Errorf("open workspace db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping workspace db: %w", err)
	}
	for _, stmt := range []struct {
		name string
		sql  string
	}{
		{"schema", WorkspaceSchema},
		{"triggers", WorkspaceTriggers},
		{"seed", WorkspaceSeed},
	} {
		if _, err := db.Exec(stmt.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply workspace %s: %w", stmt.name, err)
		}
	}
	return &WorkspaceStore{db: db, log: logger}, nil
}

// Close closes the workspace database connection.
func (w *WorkspaceStore) Close() error {
	return w.db.Close()
}

// ReindexSearch rebuilds every FTS shadow index from its primary table.
// This is the repair path for an index that drifted out of sync (e.g.
// after a crash mid-checkpoint); normal mutations never need it.
func (w *WorkspaceStore) ReindexSearch() error {
	tx, err := w.db.Begin()
	if err != nil {
		return opErr("reindex search: begin", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"decisions_fts", "progress_entries_fts", "system_patterns_fts", "custom_data_fts"} {
		if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s(%s) VALUES('rebuild')`, table, table)); err != nil {
			return opErr(fmt.Sprintf("rebuild %s", table), err)
		}
	}

	// context_fts is not content-backed, so it is repopulated directly.
	if _, err := tx.Exec(`DELETE FROM context_fts`); err != nil {
		return opErr("clear context_fts", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO context_fts(rowid, context_type, content_text)
		 SELECT id, 'product', content FROM product_context`,
	); err != nil {
		return opErr("rebuild context_fts (product)", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO context_fts(rowid, context_type, content_text)
		 SELECT id + 1, 'active', content FROM active_context`,
	); err != nil {
		return opErr("rebuild context_fts (active)", err)
	}

	if err := tx.Commit(); err != nil {
		return opErr("reindex search: commit", err)
	}
	w.log.Info().Msg("search indexes rebuilt")
	return nil
}

// utcNow returns the current UTC time in the storage timestamp layout.
func utcNow() time.Time {
	return time.Now().UTC()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
