// Package index provides the SQLite-backed node index: five relations
// (files, nodes, tags, aliases, refs) plus the aggregating retrieval query
// that folds them into one row per node.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	file     TEXT PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	checksum TEXT NOT NULL DEFAULT '',
	atime    INTEGER NOT NULL DEFAULT 0,
	mtime    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	file       TEXT NOT NULL REFERENCES files(file) ON DELETE CASCADE,
	level      INTEGER NOT NULL DEFAULT 0,
	pos        INTEGER NOT NULL DEFAULT 0,
	todo       TEXT NOT NULL DEFAULT '',
	priority   TEXT NOT NULL DEFAULT '',
	scheduled  TEXT NOT NULL DEFAULT '',
	deadline   TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	properties TEXT NOT NULL DEFAULT '{}',
	olp        TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file);

CREATE TABLE IF NOT EXISTS tags (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	tag     TEXT NOT NULL,
	UNIQUE(node_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_tags_node ON tags(node_id);

CREATE TABLE IF NOT EXISTS aliases (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	alias   TEXT NOT NULL,
	UNIQUE(node_id, alias)
);
CREATE INDEX IF NOT EXISTS idx_aliases_node ON aliases(node_id);

CREATE TABLE IF NOT EXISTS refs (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	type    TEXT NOT NULL,
	ref     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refs_node ON refs(node_id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
