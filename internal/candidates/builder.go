package candidates

import (
	"context"
	"sort"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

// SortMTime is the only sort the index can apply during retrieval; every
// other ordering is applied client-side after formatting.
const SortMTime = "mtime"

// Source yields aggregated node rows. *index.DB satisfies it; tests swap in
// fakes.
type Source interface {
	QueryNodes(byMtimeDesc bool) ([]index.NodeRow, error)
}

// Options shape one candidate-list call. The zero value retrieves every
// node unsorted and formats it with the default template.
type Options struct {
	// Filter drops nodes before formatting. Nil keeps everything.
	Filter func(models.Node) bool

	// Less orders the final candidate list. When set it always wins over
	// SortField.
	Less func(a, b models.Candidate) bool

	// SortField names a node attribute to order by. "mtime" is pushed down
	// into the query when Less is nil; anything else sorts client-side.
	SortField string

	// Formatter renders labels. Nil means the default template.
	Formatter *Formatter
}

// Builder assembles candidate lists. It holds no per-call state: every List
// call retrieves, decodes, filters, formats, and sorts from scratch, so one
// Builder may serve concurrent callers.
type Builder struct {
	src Source
}

func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// List runs the full pipeline and returns a freshly built candidate list
// owned by the caller. Any stage failure aborts the call; a partial list is
// never returned.
func (b *Builder) List(ctx context.Context, opts Options) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pushDown := opts.Less == nil && opts.SortField == SortMTime
	rows, err := b.src.QueryNodes(pushDown)
	if err != nil {
		return nil, &apperr.RetrievalError{Err: err}
	}

	nodes, err := DecodeRows(rows)
	if err != nil {
		return nil, err
	}

	formatter := opts.Formatter
	if formatter == nil {
		formatter = NewTemplate(DefaultTemplate())
	}

	out := make([]models.Candidate, 0, len(nodes))
	for _, n := range nodes {
		if opts.Filter != nil && !opts.Filter(n) {
			continue
		}
		label, spans, err := formatter.Format(n)
		if err != nil {
			return nil, &apperr.FormatError{NodeID: n.ID, Err: err}
		}
		out = append(out, models.Candidate{Label: label, Spans: spans, Node: n})
	}

	if less := lessFor(opts, pushDown); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

// lessFor picks the client-side comparator: the caller's Less if given,
// otherwise one derived from SortField unless the query already ordered the
// rows.
func lessFor(opts Options, pushedDown bool) func(a, b models.Candidate) bool {
	if opts.Less != nil {
		return opts.Less
	}
	if pushedDown {
		return nil
	}
	switch opts.SortField {
	case "atime":
		return func(a, b models.Candidate) bool { return a.Node.FileATime.After(b.Node.FileATime) }
	case "title":
		return func(a, b models.Candidate) bool { return a.Node.Title < b.Node.Title }
	default:
		return nil
	}
}
