package storage

// RegistrySchema is the SQL schema for the central _registry.db database
// that maps workspace identifiers to their database files.
const RegistrySchema = `
CREATE TABLE IF NOT EXISTS workspaces (
    id           TEXT PRIMARY KEY,
    workspace_id TEXT NOT NULL UNIQUE,
    db_path      TEXT NOT NULL,
    created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// WorkspaceSchema is the SQL schema for each per-workspace database:
// primary tables plus the FTS5 shadow tables that mirror them.
const WorkspaceSchema = `
CREATE TABLE IF NOT EXISTS decisions (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp              TEXT NOT NULL DEFAULT (datetime('now')),
    summary                TEXT NOT NULL,
    rationale              TEXT NOT NULL DEFAULT '',
    implementation_details TEXT NOT NULL DEFAULT '',
    tags                   TEXT
);

CREATE TABLE IF NOT EXISTS progress_entries (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
    status      TEXT NOT NULL,
    description TEXT NOT NULL,
    parent_id   INTEGER REFERENCES progress_entries(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS system_patterns (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    tags        TEXT
);

CREATE TABLE IF NOT EXISTS custom_data (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL DEFAULT (datetime('now')),
    category  TEXT NOT NULL,
    key       TEXT NOT NULL,
    value     TEXT NOT NULL,
    UNIQUE(category, key)
);

CREATE TABLE IF NOT EXISTS product_context (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    content TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_context (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    content TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS product_context_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp     TEXT NOT NULL DEFAULT (datetime('now')),
    version       INTEGER NOT NULL,
    content       TEXT NOT NULL,
    change_source TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS active_context_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp     TEXT NOT NULL DEFAULT (datetime('now')),
    version       INTEGER NOT NULL,
    content       TEXT NOT NULL,
    change_source TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS context_links (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp         TEXT NOT NULL DEFAULT (datetime('now')),
    source_item_type  TEXT NOT NULL,
    source_item_id    TEXT NOT NULL,
    target_item_type  TEXT NOT NULL,
    target_item_id    TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS decisions_fts USING fts5(
    summary,
    rationale,
    implementation_details,
    tags,
    content='decisions',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS progress_entries_fts USING fts5(
    status,
    description,
    content='progress_entries',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS system_patterns_fts USING fts5(
    name,
    description,
    tags,
    content='system_patterns',
    content_rowid='id'
);

CREATE VIRTUAL TABLE IF NOT EXISTS custom_data_fts USING fts5(
    category,
    key,
    value,
    content='custom_data',
    content_rowid='id'
);

-- context_fts is standalone (not content-backed) because it indexes two
-- singleton tables at once. Product content lives at rowid 1, active at
-- rowid 2 (id + 1) so the two never collide.
CREATE VIRTUAL TABLE IF NOT EXISTS context_fts USING fts5(
    context_type,
    content_text
);

CREATE INDEX IF NOT EXISTS idx_progress_parent ON progress_entries(parent_id);
CREATE INDEX IF NOT EXISTS idx_custom_data_category ON custom_data(category);
CREATE INDEX IF NOT EXISTS idx_product_history_version ON product_context_history(version);
CREATE INDEX IF NOT EXISTS idx_active_history_version ON active_context_history(version);
CREATE INDEX IF NOT EXISTS idx_links_source ON context_links(source_item_type, source_item_id);
CREATE INDEX IF NOT EXISTS idx_links_target ON context_links(target_item_type, target_item_id);
`

// WorkspaceTriggers keeps the FTS shadow tables in sync with their primary
// tables and deletes links whose endpoints are removed. The database owns
// both invariants; application code never re-indexes or cleans up links on
// the mutation path.
const WorkspaceTriggers = `
CREATE TRIGGER IF NOT EXISTS decisions_ai AFTER INSERT ON decisions BEGIN
    INSERT INTO decisions_fts(rowid, summary, rationale, implementation_details, tags)
    VALUES (new.id, new.summary, new.rationale, new.implementation_details, new.tags);
END;
CREATE TRIGGER IF NOT EXISTS decisions_ad AFTER DELETE ON decisions BEGIN
    INSERT INTO decisions_fts(decisions_fts, rowid, summary, rationale, implementation_details, tags)
    VALUES ('delete', old.id, old.summary, old.rationale, old.implementation_details, old.tags);
END;
CREATE TRIGGER IF NOT EXISTS decisions_au AFTER UPDATE ON decisions BEGIN
    INSERT INTO decisions_fts(decisions_fts, rowid, summary, rationale, implementation_details, tags)
    VALUES ('delete', old.id, old.summary, old.rationale, old.implementation_details, old.tags);
    INSERT INTO decisions_fts(rowid, summary, rationale, implementation_details, tags)
    VALUES (new.id, new.summary, new.rationale, new.implementation_details, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS progress_entries_ai AFTER INSERT ON progress_entries BEGIN
    INSERT INTO progress_entries_fts(rowid, status, description)
    VALUES (new.id, new.status, new.description);
END;
CREATE TRIGGER IF NOT EXISTS progress_entries_ad AFTER DELETE ON progress_entries BEGIN
    INSERT INTO progress_entries_fts(progress_entries_fts, rowid, status, description)
    VALUES ('delete', old.id, old.status, old.description);
END;
CREATE TRIGGER IF NOT EXISTS progress_entries_au AFTER UPDATE ON progress_entries BEGIN
    INSERT INTO progress_entries_fts(progress_entries_fts, rowid, status, description)
    VALUES ('delete', old.id, old.status, old.description);
    INSERT INTO progress_entries_fts(rowid, status, description)
    VALUES (new.id, new.status, new.description);
END;

CREATE TRIGGER IF NOT EXISTS system_patterns_ai AFTER INSERT ON system_patterns BEGIN
    INSERT INTO system_patterns_fts(rowid, name, description, tags)
    VALUES (new.id, new.name, new.description, new.tags);
END;
CREATE TRIGGER IF NOT EXISTS system_patterns_ad AFTER DELETE ON system_patterns BEGIN
    INSERT INTO system_patterns_fts(system_patterns_fts, rowid, name, description, tags)
    VALUES ('delete', old.id, old.name, old.description, old.tags);
END;
CREATE TRIGGER IF NOT EXISTS system_patterns_au AFTER UPDATE ON system_patterns BEGIN
    INSERT INTO system_patterns_fts(system_patterns_fts, rowid, name, description, tags)
    VALUES ('delete', old.id, old.name, old.description, old.tags);
    INSERT INTO system_patterns_fts(rowid, name, description, tags)
    VALUES (new.id, new.name, new.description, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS custom_data_ai AFTER INSERT ON custom_data BEGIN
    INSERT INTO custom_data_fts(rowid, category, key, value)
    VALUES (new.id, new.category, new.key, new.value);
END;
CREATE TRIGGER IF NOT EXISTS custom_data_ad AFTER DELETE ON custom_data BEGIN
    INSERT INTO custom_data_fts(custom_data_fts, rowid, category, key, value)
    VALUES ('delete', old.id, old.category, old.key, old.value);
END;
CREATE TRIGGER IF NOT EXISTS custom_data_au AFTER UPDATE ON custom_data BEGIN
    INSERT INTO custom_data_fts(custom_data_fts, rowid, category, key, value)
    VALUES ('delete', old.id, old.category, old.key, old.value);
    INSERT INTO custom_data_fts(rowid, category, key, value)
    VALUES (new.id, new.category, new.key, new.value);
END;

CREATE TRIGGER IF NOT EXISTS product_context_ai AFTER INSERT ON product_context BEGIN
    INSERT INTO context_fts(rowid, context_type, content_text)
    VALUES (new.id, 'product', new.content);
END;
CREATE TRIGGER IF NOT EXISTS product_context_ad AFTER DELETE ON product_context BEGIN
    DELETE FROM context_fts WHERE rowid = old.id AND context_type = 'product';
END;
CREATE TRIGGER IF NOT EXISTS product_context_au AFTER UPDATE ON product_context BEGIN
    DELETE FROM context_fts WHERE rowid = old.id AND context_type = 'product';
    INSERT INTO context_fts(rowid, context_type, content_text)
    VALUES (new.id, 'product', new.content);
END;

CREATE TRIGGER IF NOT EXISTS active_context_ai AFTER INSERT ON active_context BEGIN
    INSERT INTO context_fts(rowid, context_type, content_text)
    VALUES (new.id + 1, 'active', new.content);
END;
CREATE TRIGGER IF NOT EXISTS active_context_ad AFTER DELETE ON active_context BEGIN
    DELETE FROM context_fts WHERE rowid = old.id + 1 AND context_type = 'active';
END;
CREATE TRIGGER IF NOT EXISTS active_context_au AFTER UPDATE ON active_context BEGIN
    DELETE FROM context_fts WHERE rowid = old.id + 1 AND context_type = 'active';
    INSERT INTO context_fts(rowid, context_type, content_text)
    VALUES (new.id + 1, 'active', new.content);
END;

CREATE TRIGGER IF NOT EXISTS decisions_links_ad AFTER DELETE ON decisions BEGIN
    DELETE FROM context_links WHERE
        (source_item_type = 'decision' AND source_item_id = CAST(old.id AS TEXT)) OR
        (target_item_type = 'decision' AND target_item_id = CAST(old.id AS TEXT));
END;

CREATE TRIGGER IF NOT EXISTS progress_entries_links_ad AFTER DELETE ON progress_entries BEGIN
    DELETE FROM context_links WHERE
        (source_item_type = 'progress_entry' AND source_item_id = CAST(old.id AS TEXT)) OR
        (target_item_type = 'progress_entry' AND target_item_id = CAST(old.id AS TEXT));
END;

CREATE TRIGGER IF NOT EXISTS system_patterns_links_ad AFTER DELETE ON system_patterns BEGIN
    DELETE FROM context_links WHERE
        (source_item_type = 'system_pattern' AND source_item_id = CAST(old.id AS TEXT)) OR
        (target_item_type = 'system_pattern' AND target_item_id = CAST(old.id AS TEXT));
END;

-- custom_data links may address the row by surrogate ID or category:key,
-- so cleanup matches both representations.
CREATE TRIGGER IF NOT EXISTS custom_data_links_ad AFTER DELETE ON custom_data BEGIN
    DELETE FROM context_links WHERE
        (source_item_type = 'custom_data' AND
            (source_item_id = CAST(old.id AS TEXT) OR source_item_id = old.category || ':' || old.key)) OR
        (target_item_type = 'custom_data' AND
            (target_item_id = CAST(old.id AS TEXT) OR target_item_id = old.category || ':' || old.key));
END;
`

// WorkspaceSeed provisions the singleton context rows. INSERT OR IGNORE
// keeps re-opens idempotent; the FTS triggers index the seeded content.
const WorkspaceSeed = `
INSERT OR IGNORE INTO product_context (id, content) VALUES (1, '{}');
INSERT OR IGNORE INTO active_context (id, content) VALUES (1, '{}');
`
