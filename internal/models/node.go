// Package models defines the domain types for Ansuz.
package models

import "time"

// Ref is an external reference attached to a node (e.g. a citation key or URL).
type Ref struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Node represents a single addressable note heading: either a file-level note
// or a heading inside one. A node is uniquely identified by ID; all other
// fields describe its location and content.
//
// Title holds the currently selected title variant. When a node is expanded
// into candidates, every variant shares identical fields except Title.
type Node struct {
	ID         string            `json:"id"`
	File       string            `json:"file"`
	FileTitle  string            `json:"file_title,omitempty"`
	Level      int               `json:"level"`
	Pos        int               `json:"pos"`
	Olp        []string          `json:"olp,omitempty"`
	Title      string            `json:"title"`
	Todo       string            `json:"todo,omitempty"`
	Priority   string            `json:"priority,omitempty"`
	Scheduled  string            `json:"scheduled,omitempty"`
	Deadline   string            `json:"deadline,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	FileATime  time.Time         `json:"file_atime"`
	FileMTime  time.Time         `json:"file_mtime"`
	Tags       []string          `json:"tags,omitempty"`
	Aliases    []string          `json:"aliases,omitempty"`
	Refs       []Ref             `json:"refs,omitempty"`
}

// Span marks the byte range a template field occupies inside a candidate
// label. It is presentation metadata kept separate from the label text so
// clients can style fields without re-parsing the label.
type Span struct {
	Field string `json:"field"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Candidate is a (display label, node) pair offered to an interactive
// selector. The list holding it is constructed fresh on every retrieval call
// and owned by the caller once returned.
type Candidate struct {
	Label string `json:"label"`
	Spans []Span `json:"spans,omitempty"`
	Node  Node   `json:"node"`
}

// FileMeta is lightweight per-file metadata collected while listing the vault.
type FileMeta struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ATime    time.Time `json:"atime"`
	MTime    time.Time `json:"mtime"`
}
