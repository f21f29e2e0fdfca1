package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// Registry owns every workspace connection in the process. It maps opaque
// workspace identifiers to database files through a central _registry.db
// and hands out one reused WorkspaceStore per workspace. The registry is
// created by the entry point and injected into the tool layer; there is no
// ambient global.
type Registry struct {
	db      *sql.DB
	dataDir string
	log     zerolog.Logger
	group   singleflight.Group

	mu     sync.Mutex
	stores map[string]*WorkspaceStore
	closed bool
}

// OpenRegistry opens (or creates) the _registry.db database under dataDir
// and prepares the workspaces directory.
func OpenRegistry(dataDir string, logger zerolog.Logger) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "workspaces"), 0o755); err != nil {
		return nil, fmt.Errorf("create workspaces dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "_registry.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	if _, err := db.Exec(RegistrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate registry db: %w", err)
	}

	return &Registry{
		db:      db,
		dataDir: dataDir,
		log:     logger,
		stores:  make(map[string]*WorkspaceStore),
	}, nil
}

// Get returns the store for a workspace, opening and initializing it on
// first access. Concurrent first access for the same workspace is
// deduplicated per key; unrelated workspaces open in parallel.
func (r *Registry) Get(workspaceID string) (*WorkspaceStore, error) {
	if workspaceID == "" {
		return nil, validationErr("workspace_id is required")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, &UnavailableError{Workspace: workspaceID, Err: errors.New("registry is closed")}
	}
	if ws, ok := r.stores[workspaceID]; ok {
		r.mu.Unlock()
		return ws, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(workspaceID, func() (any, error) {
		r.mu.Lock()
		if ws, ok := r.stores[workspaceID]; ok {
			r.mu.Unlock()
			return ws, nil
		}
		r.mu.Unlock()

		ws, err := r.openWorkspace(workspaceID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			ws.Close()
			return nil, &UnavailableError{Workspace: workspaceID, Err: errors.New("registry closed during open")}
		}
		r.stores[workspaceID] = ws
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*WorkspaceStore), nil
}

// Workspaces lists every registered workspace, ordered by identifier.
func (r *Registry) Workspaces() ([]models.Workspace, error) {
	rows, err := r.db.Query(
		`SELECT id, workspace_id, db_path, created_at FROM workspaces ORDER BY workspace_id`,
	)
	if err != nil {
		return nil, opErr("list workspaces", err)
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.WorkspaceKey, &w.DBPath, &w.CreatedAt); err != nil {
			return nil, opErr("scan workspace", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Close closes every open workspace store and the registry database.
// Repeated calls are no-ops.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	for id, ws := range r.stores {
		if err := ws.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close workspace %q: %w", id, err)
		}
	}
	r.stores = nil
	if err := r.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close registry db: %w", err)
	}
	return firstErr
}

// openWorkspace resolves the workspace's database file, creating the
// registry entry on first sight, and opens it at the latest schema.
func (r *Registry) openWorkspace(workspaceID string) (*WorkspaceStore, error) {
	relPath, err := r.resolveDBPath(workspaceID)
	if err != nil {
		return nil, &UnavailableError{Workspace: workspaceID, Err: err}
	}

	absPath := filepath.Join(r.dataDir, relPath)
	ws, err := OpenWorkspace(absPath, r.log.With().Str("workspace", workspaceID).Logger())
	if err != nil {
		return nil, &UnavailableError{Workspace: workspaceID, Err: err}
	}
	r.log.Debug().Str("workspace", workspaceID).Str("db", relPath).Msg("workspace opened")
	return ws, nil
}

// resolveDBPath looks up the workspace's database file, allocating a fresh
// one if the workspace has never been seen. The conditional insert keeps
// allocation race-free across processes sharing the data directory.
func (r *Registry) resolveDBPath(workspaceID string) (string, error) {
	var relPath string
	err := r.db.QueryRow(
		`SELECT db_path FROM workspaces WHERE workspace_id = ?`, workspaceID,
	).Scan(&relPath)
	if err == nil {
		return relPath, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup workspace: %w", err)
	}

	id := uuid.New().String()
	relPath = filepath.Join("workspaces", id+".db")
	if _, err := r.db.Exec(
		`INSERT INTO workspaces (id, workspace_id, db_path) VALUES (?, ?, ?)
		 ON CONFLICT(workspace_id) DO NOTHING`,
		id, workspaceID, relPath,
	); err != nil {
		return "", fmt.Errorf("register workspace: %w", err)
	}

	// Re-read in case another process won the insert.
	if err := r.db.QueryRow(
		`SELECT db_path FROM workspaces WHERE workspace_id = ?`, workspaceID,
	).Scan(&relPath); err != nil {
		return "", fmt.Errorf("lookup workspace after register: %w", err)
	}
	return relPath, nil
}
