package index

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ListSep)
}

// A node with T tags, A aliases, and R refs joins into T*A*R raw rows.
// The aggregating query must still return exactly one row whose folded
// columns round-trip to T, A, and R elements with no duplicates.
func TestQueryNodes_FanOutSafety(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	err := db.ReplaceFile(fileMeta("fan.md", "cs", now), "Fan", []parser.ParsedNode{{
		ID:      "fan-1",
		Title:   "Fan Out",
		Tags:    []string{"alpha", "beta", "gamma"},
		Aliases: []string{"x", "y"},
		Refs: []models.Ref{
			{Type: "cite", Value: "w1"},
			{Type: "cite", Value: "w2"},
			{Type: "cite", Value: "w3"},
			{Type: "https", Value: "//example.com"},
		},
	}})
	if err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}

	rows, err := db.QueryNodes(false)
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(rows))
	}
	r := rows[0]

	tags := splitList(r.Tags)
	aliases := splitList(r.Aliases)
	refs := splitList(r.Refs)
	if len(tags) != 3 {
		t.Errorf("tags = %v, want 3 entries", tags)
	}
	if len(aliases) != 2 {
		t.Errorf("aliases = %v, want 2 entries", aliases)
	}
	if len(refs) != 4 {
		t.Errorf("refs = %v, want 4 entries", refs)
	}

	sort.Strings(tags)
	if tags[0] != "alpha" || tags[1] != "beta" || tags[2] != "gamma" {
		t.Errorf("tags round-trip = %v", tags)
	}
	seen := make(map[string]bool)
	for _, ref := range refs {
		if seen[ref] {
			t.Errorf("duplicate ref %q from fan-out", ref)
		}
		seen[ref] = true
	}
}

// Asymmetric cardinalities across the three relations are the case where a
// wrong grouping order would reintroduce duplicates.
func TestQueryNodes_AsymmetricCardinalities(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	_ = db.ReplaceFile(fileMeta("a.md", "cs", now), "A", []parser.ParsedNode{{
		ID:      "asym",
		Title:   "Asym",
		Tags:    []string{"one"},
		Aliases: []string{"a1", "a2", "a3"},
		Refs:    []models.Ref{{Type: "cite", Value: "r1"}, {Type: "cite", Value: "r2"}},
	}})

	rows, err := db.QueryNodes(false)
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := len(splitList(rows[0].Tags)); got != 1 {
		t.Errorf("tags count = %d, want 1", got)
	}
	if got := len(splitList(rows[0].Aliases)); got != 3 {
		t.Errorf("aliases count = %d, want 3", got)
	}
	if got := len(splitList(rows[0].Refs)); got != 2 {
		t.Errorf("refs count = %d, want 2", got)
	}
}

func TestQueryNodes_EmptyRelations(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	_ = db.ReplaceFile(fileMeta("bare.md", "cs", now), "Bare", []parser.ParsedNode{{
		ID:    "bare-1",
		Title: "Bare",
	}})

	rows, err := db.QueryNodes(false)
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Tags != "" || r.Aliases != "" || r.Refs != "" {
		t.Errorf("empty relations should fold to empty strings: tags=%q aliases=%q refs=%q",
			r.Tags, r.Aliases, r.Refs)
	}
	if r.Title != "Bare" || r.FileTitle != "Bare" {
		t.Errorf("row = %+v", r)
	}
}

func TestQueryNodes_MtimeSortPushdown(t *testing.T) {
	db := testDB(t)
	base := time.Now().Add(-time.Hour)

	for i, name := range []string{"first", "second", "third"} {
		mtime := base.Add(time.Duration(i) * time.Minute)
		err := db.ReplaceFile(fileMeta(name+".md", "cs"+name, mtime), name, []parser.ParsedNode{{
			ID:    name,
			Title: name,
		}})
		if err != nil {
			t.Fatalf("ReplaceFile %s: %v", name, err)
		}
	}

	rows, err := db.QueryNodes(true)
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].ID != "third" || rows[1].ID != "second" || rows[2].ID != "first" {
		t.Errorf("order = %s, %s, %s; want third, second, first",
			rows[0].ID, rows[1].ID, rows[2].ID)
	}
}

func TestQueryNodes_ScalarColumns(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	_ = db.ReplaceFile(fileMeta("s.md", "cs", now), "Scalars", []parser.ParsedNode{{
		ID:         "s1",
		Level:      2,
		Pos:        120,
		Title:      "Heading",
		Todo:       "TODO",
		Priority:   "A",
		Scheduled:  "2026-09-01",
		Deadline:   "2026-09-15",
		Olp:        []string{"Scalars", "Parent"},
		Properties: map[string]string{"category": "work"},
	}})

	row, err := db.QueryNode("s1")
	if err != nil {
		t.Fatalf("QueryNode: %v", err)
	}
	if row == nil {
		t.Fatal("QueryNode returned nil")
	}
	if row.Level != 2 || row.Pos != 120 || row.Todo != "TODO" || row.Priority != "A" {
		t.Errorf("row = %+v", row)
	}
	if row.Scheduled != "2026-09-01" || row.Deadline != "2026-09-15" {
		t.Errorf("dates: scheduled=%q deadline=%q", row.Scheduled, row.Deadline)
	}
	if row.Olp != `["Scalars","Parent"]` {
		t.Errorf("olp = %q", row.Olp)
	}
	if row.Properties != `{"category":"work"}` {
		t.Errorf("properties = %q", row.Properties)
	}
	if row.MTime != now.Unix() {
		t.Errorf("mtime = %d, want %d", row.MTime, now.Unix())
	}
}

func TestQueryNode_Missing(t *testing.T) {
	db := testDB(t)
	row, err := db.QueryNode("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for missing node, got %+v", row)
	}
}

// Two nodes in the same file must each come back as a single independent row.
func TestQueryNodes_MultipleNodesPerFile(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	_ = db.ReplaceFile(fileMeta("multi.md", "cs", now), "Multi", []parser.ParsedNode{
		{ID: "file-node", Title: "Multi", Tags: []string{"a", "b"}},
		{ID: "heading-node", Level: 2, Pos: 40, Title: "Section", Aliases: []string{"Sec"}},
	})

	rows, err := db.QueryNodes(false)
	if err != nil {
		t.Fatalf("QueryNodes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	byID := make(map[string]NodeRow, 2)
	for _, r := range rows {
		byID[r.ID] = r
	}
	if got := len(splitList(byID["file-node"].Tags)); got != 2 {
		t.Errorf("file-node tags = %d, want 2", got)
	}
	if byID["heading-node"].Tags != "" {
		t.Errorf("heading-node tags leaked: %q", byID["heading-node"].Tags)
	}
	if got := len(splitList(byID["heading-node"].Aliases)); got != 1 {
		t.Errorf("heading-node aliases = %d, want 1", got)
	}
}
