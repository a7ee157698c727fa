//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/ansuz/internal/parser"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search falls back to LIKE over the base tables.
	return nil
}

func ftsUpsertNode(_ *sql.Tx, _ string, _ parser.ParsedNode) error { return nil }

func ftsDeleteFile(_ *sql.Tx, _ string) error { return nil }

// Search performs a LIKE-based search over node titles, aliases, and tags
// (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT n.id, n.title, n.title
		FROM nodes n
		WHERE n.title LIKE ?
		   OR EXISTS (SELECT 1 FROM aliases a WHERE a.node_id = n.id AND a.alias LIKE ?)
		   OR EXISTS (SELECT 1 FROM tags t WHERE t.node_id = n.id AND t.tag LIKE ?)
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
