// Package parser extracts nodes from Markdown content: the file-level note
// described by YAML frontmatter, plus any heading carrying a {#id} anchor.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/models"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	anchorRe  = regexp.MustCompile(`\s*\{#([A-Za-z0-9][A-Za-z0-9_-]*)\}\s*$`)
	todoRe    = regexp.MustCompile(`^(TODO|DONE|WAIT)\s+`)
	prioRe    = regexp.MustCompile(`^\[#([A-C])\]\s+`)
	tagRe     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// frontmatter is the YAML schema recognised at the top of a note file.
type frontmatter struct {
	ID         string            `yaml:"id"`
	Title      string            `yaml:"title"`
	Aliases    []string          `yaml:"aliases"`
	Tags       []string          `yaml:"tags"`
	Refs       []string          `yaml:"refs"`
	Todo       string            `yaml:"todo"`
	Priority   string            `yaml:"priority"`
	Scheduled  string            `yaml:"scheduled"`
	Deadline   string            `yaml:"deadline"`
	Properties map[string]string `yaml:"properties"`
}

// ParsedNode is one node extracted from a file, before file metadata
// (path, atime, mtime) is attached by the indexer.
type ParsedNode struct {
	ID         string
	Level      int // 0 for the file-level node
	Pos        int // byte offset of the heading (0 for file-level)
	Olp        []string
	Title      string
	Todo       string
	Priority   string
	Scheduled  string
	Deadline   string
	Properties map[string]string
	Tags       []string
	Aliases    []string
	Refs       []models.Ref
}

// Result holds every node found in one file. FileTitle is the frontmatter
// title (falling back to the first H1) and applies to all nodes in the file.
type Result struct {
	FileTitle string
	Nodes     []ParsedNode
}

// Parse extracts all nodes from raw Markdown bytes. A file whose frontmatter
// carries no id yields heading nodes only; a file with neither yields an
// empty result, not an error.
func Parse(data []byte) (*Result, error) {
	fm, body, bodyOffset := splitFrontmatter(data)

	fileTitle := fm.Title
	if fileTitle == "" {
		fileTitle = firstHeading(body)
	}

	res := &Result{FileTitle: fileTitle}

	if fm.ID != "" {
		refs, err := parseRefs(fm.Refs)
		if err != nil {
			return nil, err
		}
		fileNode := ParsedNode{
			ID:         fm.ID,
			Level:      0,
			Pos:        0,
			Title:      fileTitle,
			Todo:       fm.Todo,
			Priority:   fm.Priority,
			Scheduled:  fm.Scheduled,
			Deadline:   fm.Deadline,
			Properties: fm.Properties,
			Tags:       dedupe(append(append([]string{}, fm.Tags...), inlineTags(body)...)),
			Aliases:    dedupe(fm.Aliases),
			Refs:       refs,
		}
		res.Nodes = append(res.Nodes, fileNode)
	}

	res.Nodes = append(res.Nodes, headingNodes(body, bodyOffset, fileTitle)...)
	return res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Invalid or absent YAML falls back to an empty
// frontmatter with the whole content as body.
func splitFrontmatter(data []byte) (frontmatter, string, int) {
	const delim = "---"
	s := string(data)
	trimmed := strings.TrimLeft(s, "\n\r")
	lead := len(s) - len(trimmed)

	if !strings.HasPrefix(trimmed, delim) {
		return frontmatter{}, s, 0
	}
	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return frontmatter{}, s, 0
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return frontmatter{}, s, 0
	}

	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(after, "\n\r")
	offset := lead + len(delim) + idx + 1 + len(delim) + (len(after) - len(body))
	return fm, body, offset
}

// headingNodes walks the body line by line and emits one node per heading
// with a {#id} anchor. The outline path of each node is the chain of
// enclosing heading titles, rooted at the file title.
func headingNodes(body string, bodyOffset int, fileTitle string) []ParsedNode {
	var out []ParsedNode

	// Outline stack: olp[0] is the file title, olp[i] the last seen heading
	// of level i.
	olp := make([]string, 1, 7)
	olp[0] = fileTitle

	pos := bodyOffset
	for _, line := range strings.SplitAfter(body, "\n") {
		linePos := pos
		pos += len(line)

		m := headingRe.FindStringSubmatch(strings.TrimRight(line, "\n"))
		if m == nil {
			continue
		}
		level := len(m[1])
		text := strings.TrimSpace(m[2])

		id := ""
		if am := anchorRe.FindStringSubmatch(text); am != nil {
			id = am[1]
			text = strings.TrimSpace(anchorRe.ReplaceAllString(text, ""))
		}

		todo := ""
		if tm := todoRe.FindStringSubmatch(text); tm != nil {
			todo = tm[1]
			text = strings.TrimPrefix(text, tm[0])
		}
		priority := ""
		if pm := prioRe.FindStringSubmatch(text); pm != nil {
			priority = pm[1]
			text = strings.TrimPrefix(text, pm[0])
		}

		if id != "" {
			out = append(out, ParsedNode{
				ID:       id,
				Level:    level,
				Pos:      linePos,
				Olp:      append([]string{}, olp[:minInt(level, len(olp))]...),
				Title:    text,
				Todo:     todo,
				Priority: priority,
				Tags:     dedupe(inlineTags(text)),
			})
		}

		// Maintain the outline stack for subsequent headings.
		if level < len(olp) {
			olp = olp[:level]
		}
		for len(olp) < level {
			olp = append(olp, "")
		}
		olp = append(olp, text)
	}
	return out
}

// parseRefs decodes frontmatter ref entries of the form "type:value".
func parseRefs(raw []string) ([]models.Ref, error) {
	var out []models.Ref
	for _, r := range raw {
		typ, val, ok := strings.Cut(r, ":")
		if !ok || typ == "" || val == "" {
			return nil, fmt.Errorf("parser: malformed ref %q (want type:value)", r)
		}
		out = append(out, models.Ref{Type: typ, Value: val})
	}
	return out, nil
}

// inlineTags collects #tags from text.
func inlineTags(text string) []string {
	matches := tagRe.FindAllStringSubmatch(text, -1)
	var out []string
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// dedupe removes duplicates preserving first-seen order and dropping blanks.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// firstHeading returns the first H1 text, or empty string.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(anchorRe.ReplaceAllString(trimmed[2:], ""))
		}
	}
	return ""
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
