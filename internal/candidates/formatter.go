package candidates

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/models"
)

// FormatFunc renders a node into a candidate label. Returning an error
// aborts the whole candidate list.
type FormatFunc func(models.Node) (string, error)

// Field is one column of a template: a node attribute and the exact display
// width it is truncated or right-padded to. Width 0 renders the value as-is.
type Field struct {
	Name  string `yaml:"field"`
	Width int    `yaml:"width"`
}

// Template is an ordered list of fields rendered left to right, joined by a
// single space.
type Template struct {
	Fields []Field
}

// fieldNames are the node attributes a template may reference.
var fieldNames = map[string]func(models.Node) string{
	"id":        func(n models.Node) string { return n.ID },
	"title":     func(n models.Node) string { return n.Title },
	"file":      func(n models.Node) string { return n.File },
	"filetitle": func(n models.Node) string { return n.FileTitle },
	"priority":  func(n models.Node) string { return n.Priority },
	"scheduled": func(n models.Node) string { return n.Scheduled },
	"deadline":  func(n models.Node) string { return n.Deadline },
	"todo": func(n models.Node) string {
		if n.Todo == "" {
			return ""
		}
		return "t:" + n.Todo
	},
	"tags": func(n models.Node) string {
		if len(n.Tags) == 0 {
			return ""
		}
		return "#" + strings.Join(n.Tags, " #")
	},
	"aliases": func(n models.Node) string { return strings.Join(n.Aliases, ", ") },
	"olp":     func(n models.Node) string { return strings.Join(n.Olp, " > ") },
}

// Validate checks that every field references a known attribute and carries
// a non-negative width.
func (t Template) Validate() error {
	for i, f := range t.Fields {
		if _, ok := fieldNames[f.Name]; !ok {
			return fmt.Errorf("candidates: field %d: unknown name %q", i, f.Name)
		}
		if err := validation.Validate(f.Width, validation.Min(0)); err != nil {
			return fmt.Errorf("candidates: field %q: width: %w", f.Name, err)
		}
	}
	return nil
}

// DefaultTemplate is the stock candidate layout: state, tags, and title in
// fixed columns, then the file path and outline path free-width.
func DefaultTemplate() Template {
	return Template{Fields: []Field{
		{Name: "todo", Width: 10},
		{Name: "tags", Width: 30},
		{Name: "title", Width: 40},
		{Name: "file"},
		{Name: "olp"},
	}}
}

// Formatter renders nodes into candidate labels. Exactly one of the two
// variants is set at construction: a free-form callback or a fixed-width
// template.
type Formatter struct {
	fn   FormatFunc
	tmpl Template
}

// NewFunc returns a callback-backed formatter.
func NewFunc(fn FormatFunc) *Formatter {
	return &Formatter{fn: fn}
}

// NewTemplate returns a template-backed formatter. The template must have
// been validated; an unknown field name here surfaces at render time.
func NewTemplate(t Template) *Formatter {
	return &Formatter{tmpl: t}
}

// Format renders one node. Template rendering also reports per-field spans
// into the label so a UI can style columns without re-parsing it; callback
// rendering has no field structure and returns nil spans.
func (f *Formatter) Format(n models.Node) (string, []models.Span, error) {
	if f.fn != nil {
		label, err := f.fn(n)
		return label, nil, err
	}

	var b strings.Builder
	spans := make([]models.Span, 0, len(f.tmpl.Fields))
	for i, fld := range f.tmpl.Fields {
		render, ok := fieldNames[fld.Name]
		if !ok {
			return "", nil, fmt.Errorf("candidates: unknown template field %q", fld.Name)
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		cell := fit(render(n), fld.Width)
		start := b.Len()
		b.WriteString(cell)
		spans = append(spans, models.Span{Field: fld.Name, Start: start, End: b.Len()})
	}
	return b.String(), spans, nil
}

// fit truncates or right-pads s to exactly width runes. Width 0 leaves the
// value as-is.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
