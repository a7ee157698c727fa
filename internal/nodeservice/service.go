// Package nodeservice coordinates storage, index, and the candidate
// pipeline behind one API used by the HTTP handlers and the MCP server.
package nodeservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/candidates"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// NoteDetail is the full representation of a vault file.
type NoteDetail struct {
	Path     string    `json:"path"`
	Content  string    `json:"content"`
	Checksum string    `json:"checksum"`
	NodeIDs  []string  `json:"node_ids"`
	MTime    time.Time `json:"mtime"`
}

// ListOptions are the per-call knobs of a candidate listing. Template and
// Sort fall back to the service defaults when empty.
type ListOptions struct {
	Template string
	Sort     string
	Tag      string
}

// Service coordinates storage and index operations.
type Service struct {
	store       storage.Provider
	db          *index.DB
	builder     *candidates.Builder
	templates   map[string]candidates.Template
	defaultSort string
}

// NewService creates a node service. templates maps display-template names
// to their layouts; defaultSort names the sort applied when a call does not
// choose one.
func NewService(store storage.Provider, db *index.DB, templates map[string]candidates.Template, defaultSort string) *Service {
	return &Service{
		store:       store,
		db:          db,
		builder:     candidates.NewBuilder(db),
		templates:   templates,
		defaultSort: defaultSort,
	}
}

// GetNode returns the fully decoded node for an id.
func (s *Service) GetNode(_ context.Context, id string) (*models.Node, error) {
	row, err := s.db.QueryNode(id)
	if err != nil {
		return nil, &apperr.RetrievalError{Err: err}
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	n, err := candidates.DecodeRow(*row)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListCandidates runs the retrieval pipeline with per-call options. Every
// call resolves its own template and sort; nothing is process-global.
func (s *Service) ListCandidates(ctx context.Context, opts ListOptions) ([]models.Candidate, error) {
	tmpl, err := s.resolveTemplate(opts.Template)
	if err != nil {
		return nil, err
	}

	sortField := opts.Sort
	if sortField == "" {
		sortField = s.defaultSort
	}

	var filter func(models.Node) bool
	if opts.Tag != "" {
		filter = func(n models.Node) bool {
			for _, t := range n.Tags {
				if t == opts.Tag {
					return true
				}
			}
			return false
		}
	}

	return s.builder.List(ctx, candidates.Options{
		Filter:    filter,
		SortField: sortField,
		Formatter: candidates.NewTemplate(tmpl),
	})
}

func (s *Service) resolveTemplate(name string) (candidates.Template, error) {
	if name == "" {
		return candidates.DefaultTemplate(), nil
	}
	tmpl, ok := s.templates[name]
	if !ok {
		return candidates.Template{}, fmt.Errorf("nodeservice: unknown template %q: %w", name, apperr.ErrNotFound)
	}
	return tmpl, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// GetNote reads a vault file from storage.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new vault file and indexes its nodes.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency: when
// ifMatch is set it must equal the checksum of the stored content.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a vault file from storage and its nodes from the index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteFile(path)
}

// IndexFile parses data and replaces the file's nodes in the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	meta, err := s.store.Stat(path)
	if err != nil {
		return err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return s.db.ReplaceFile(meta, res.FileTitle, res.Nodes)
}

func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(res.Nodes))
	for i, n := range res.Nodes {
		ids[i] = n.ID
	}

	mtime := time.Now()
	if meta, err := s.store.Stat(path); err == nil {
		mtime = meta.MTime
	}
	return &NoteDetail{
		Path:     path,
		Content:  string(data),
		Checksum: checksum.Sum(data),
		NodeIDs:  ids,
		MTime:    mtime,
	}, nil
}

// Templates lists the configured display-template names, default first.
func (s *Service) Templates() []string {
	names := make([]string, 0, len(s.templates)+1)
	names = append(names, "default")
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}
