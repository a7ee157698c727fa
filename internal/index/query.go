package index

import (
	"database/sql"
	"fmt"
)

// ListSep separates entries inside the aggregated tags/aliases/refs columns.
// The ASCII unit separator cannot appear in titles, tags, or ref values.
const ListSep = "\x1f"

// NodeRow is one denormalized row produced by the aggregating query: all
// scalar node attributes plus each one-to-many relation folded into a
// ListSep-delimited string. Decoding into domain nodes happens in the
// candidates package.
type NodeRow struct {
	ID         string
	File       string
	FileTitle  string
	Level      int
	Pos        int
	Todo       string
	Priority   string
	Scheduled  string
	Deadline   string
	Title      string
	Properties string // JSON object as stored
	Olp        string // JSON array as stored
	ATime      int64  // unix seconds
	MTime      int64  // unix seconds
	Tags       string // ListSep-delimited, empty when the node has no tags
	Aliases    string // ListSep-delimited
	Refs       string // ListSep-delimited "type:value" entries, in insertion order
}

// nodeQuerySQL folds the three independent one-to-many relations into one
// row per node without cross-multiplication. Joining all three at once
// yields T*A*R rows per node, so aggregation runs in three nested passes,
// each collapsing exactly one relation while the others are held fixed:
//
//	pass 1 groups by (id, tag, alias) and folds refs;
//	pass 2 groups by (id, tag) and folds aliases — refs is constant within
//	       the group because pass 1 already collapsed it;
//	pass 3 groups by id alone and folds tags.
//
// LEFT JOINs keep nodes with empty relations; group_concat skips the NULLs
// they produce, so empty relations come back as NULL columns.
const nodeQuerySQL = `
SELECT id, file, filetitle, level, pos, todo, priority, scheduled, deadline,
       title, properties, olp, atime, mtime, tags, aliases, refs
FROM (
	SELECT id, file, filetitle, level, pos, todo, priority, scheduled, deadline,
	       title, properties, olp, atime, mtime,
	       group_concat(tag, char(31)) AS tags, aliases, refs
	FROM (
		SELECT id, file, filetitle, level, pos, todo, priority, scheduled, deadline,
		       title, properties, olp, atime, mtime, tag,
		       group_concat(alias, char(31)) AS aliases, refs
		FROM (
			SELECT nodes.id AS id, nodes.file AS file, files.title AS filetitle,
			       nodes.level AS level, nodes.pos AS pos, nodes.todo AS todo,
			       nodes.priority AS priority, nodes.scheduled AS scheduled,
			       nodes.deadline AS deadline, nodes.title AS title,
			       nodes.properties AS properties, nodes.olp AS olp,
			       files.atime AS atime, files.mtime AS mtime,
			       tags.tag AS tag, aliases.alias AS alias,
			       group_concat(refs.type || ':' || refs.ref, char(31)) AS refs
			FROM nodes
			LEFT JOIN files   ON files.file      = nodes.file
			LEFT JOIN tags    ON tags.node_id    = nodes.id
			LEFT JOIN aliases ON aliases.node_id = nodes.id
			LEFT JOIN refs    ON refs.node_id    = nodes.id
			%s
			GROUP BY nodes.id, tags.tag, aliases.alias
		)
		GROUP BY id, tag
	)
	GROUP BY id
)%s`

// QueryNodes returns one row per indexed node in a single round trip.
// When byMtimeDesc is set the sort is pushed down to SQLite, which is
// materially cheaper than a client-side sort on large corpora.
func (db *DB) QueryNodes(byMtimeDesc bool) ([]NodeRow, error) {
	order := ""
	if byMtimeDesc {
		order = "\nORDER BY mtime DESC"
	}
	query := fmt.Sprintf(nodeQuerySQL, "", order)

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("index: query nodes: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		r, err := scanNodeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryNode returns the aggregated row for a single node, or nil if the id
// is not indexed.
func (db *DB) QueryNode(id string) (*NodeRow, error) {
	query := fmt.Sprintf(nodeQuerySQL, "WHERE nodes.id = ?", "")

	rows, err := db.conn.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("index: query node: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanNodeRow(rows)
	if err != nil {
		return nil, err
	}
	return &r, rows.Err()
}

func scanNodeRow(rows *sql.Rows) (NodeRow, error) {
	var r NodeRow
	var fileTitle, tags, aliases, refs sql.NullString
	var atime, mtime sql.NullInt64
	if err := rows.Scan(&r.ID, &r.File, &fileTitle, &r.Level, &r.Pos, &r.Todo,
		&r.Priority, &r.Scheduled, &r.Deadline, &r.Title, &r.Properties, &r.Olp,
		&atime, &mtime, &tags, &aliases, &refs); err != nil {
		return NodeRow{}, fmt.Errorf("index: scan node row: %w", err)
	}
	r.FileTitle = fileTitle.String
	r.ATime = atime.Int64
	r.MTime = mtime.Int64
	r.Tags = tags.String
	r.Aliases = aliases.String
	r.Refs = refs.String
	return r, nil
}
