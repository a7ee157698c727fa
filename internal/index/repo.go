package index

import (
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ReplaceFile replaces everything the index knows about one vault file:
// the files row plus all nodes found in it and their tags, aliases, and
// refs, within a single transaction.
func (db *DB) ReplaceFile(meta models.FileMeta, fileTitle string, nodes []parser.ParsedNode) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (file, title, checksum, atime, mtime)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file) DO UPDATE SET
			title    = excluded.title,
			checksum = excluded.checksum,
			atime    = excluded.atime,
			mtime    = excluded.mtime
	`, meta.Path, fileTitle, meta.Checksum, meta.ATime.Unix(), meta.MTime.Unix())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// Drop the file's previous nodes; tags/aliases/refs cascade.
	if err := ftsDeleteFile(tx, meta.Path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM nodes WHERE file = ?`, meta.Path); err != nil {
		return fmt.Errorf("index: delete old nodes: %w", err)
	}

	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (id, file, level, pos, todo, priority, scheduled, deadline, title, properties, olp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for _, n := range nodes {
		props, olp := encodeJSONFields(n.Properties, n.Olp)
		if _, err := nodeStmt.Exec(n.ID, meta.Path, n.Level, n.Pos, n.Todo, n.Priority,
			n.Scheduled, n.Deadline, n.Title, props, olp); err != nil {
			return fmt.Errorf("index: insert node %s: %w", n.ID, err)
		}
		for _, tag := range n.Tags {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (node_id, tag) VALUES (?, ?)`, n.ID, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
		for _, alias := range n.Aliases {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO aliases (node_id, alias) VALUES (?, ?)`, n.ID, alias); err != nil {
				return fmt.Errorf("index: insert alias: %w", err)
			}
		}
		for _, ref := range n.Refs {
			if _, err := tx.Exec(`INSERT INTO refs (node_id, type, ref) VALUES (?, ?, ?)`, n.ID, ref.Type, ref.Value); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
		if err := ftsUpsertNode(tx, meta.Path, n); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteFile removes a vault file and all its nodes from the index.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDeleteFile(tx, path); err != nil {
		return err
	}
	_, _ = tx.Exec(`DELETE FROM files WHERE file = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE file = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed file keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT file, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// encodeJSONFields normalises properties and olp to their stored JSON forms.
func encodeJSONFields(props map[string]string, olp []string) (string, string) {
	p := "{}"
	if len(props) > 0 {
		if b, err := json.Marshal(props); err == nil {
			p = string(b)
		}
	}
	o := "[]"
	if len(olp) > 0 {
		if b, err := json.Marshal(olp); err == nil {
			o = string(b)
		}
	}
	return p, o
}
