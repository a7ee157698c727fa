// Package candidates turns aggregated index rows into formatted candidate
// lists for interactive note selection. The pipeline is a single pass:
// decode rows into nodes, expand title variants, filter, format, sort.
package candidates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// DecodeRow converts one aggregated row into a domain node: splits the
// delimited list columns, parses the JSON properties/olp columns, and
// decodes each ref back into its (type, value) pair.
func DecodeRow(r index.NodeRow) (models.Node, error) {
	n := models.Node{
		ID:        r.ID,
		File:      r.File,
		FileTitle: r.FileTitle,
		Level:     r.Level,
		Pos:       r.Pos,
		Title:     r.Title,
		Todo:      r.Todo,
		Priority:  r.Priority,
		Scheduled: r.Scheduled,
		Deadline:  r.Deadline,
		FileATime: time.Unix(r.ATime, 0),
		FileMTime: time.Unix(r.MTime, 0),
		Tags:      splitList(r.Tags),
		Aliases:   splitList(r.Aliases),
	}

	if r.Properties != "" {
		if err := json.Unmarshal([]byte(r.Properties), &n.Properties); err != nil {
			return models.Node{}, &apperr.DecodeError{NodeID: r.ID, Err: fmt.Errorf("properties: %w", err)}
		}
	}
	if r.Olp != "" {
		if err := json.Unmarshal([]byte(r.Olp), &n.Olp); err != nil {
			return models.Node{}, &apperr.DecodeError{NodeID: r.ID, Err: fmt.Errorf("olp: %w", err)}
		}
	}

	for _, enc := range splitList(r.Refs) {
		typ, val, ok := strings.Cut(enc, ":")
		if !ok {
			return models.Node{}, &apperr.DecodeError{NodeID: r.ID, Err: fmt.Errorf("ref %q has no type separator", enc)}
		}
		n.Refs = append(n.Refs, models.Ref{Type: typ, Value: val})
	}
	return n, nil
}

// ExpandTitles returns one node per title variant: the primary title first,
// then each alias in stored order. Every variant is a full copy of the node —
// including the complete alias set — differing only in Title, so a selector
// can offer any name a note is known by and still resolve the same node.
func ExpandTitles(n models.Node) []models.Node {
	out := make([]models.Node, 0, 1+len(n.Aliases))
	out = append(out, n)
	for _, alias := range n.Aliases {
		v := n
		v.Title = alias
		out = append(out, v)
	}
	return out
}

// DecodeRows decodes every row and expands title variants, preserving row
// order. Any decode failure aborts the whole batch.
func DecodeRows(rows []index.NodeRow) ([]models.Node, error) {
	nodes := make([]models.Node, 0, len(rows))
	for _, r := range rows {
		n, err := DecodeRow(r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, ExpandTitles(n)...)
	}
	return nodes, nil
}

// splitList splits a ListSep-delimited column. The aggregating query emits
// NULL (scanned as "") for empty relations, so "" means the empty set.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, index.ListSep)
}
