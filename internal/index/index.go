package index

import (
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// NodeIndex defines the interface for node indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NodeIndex interface {
	ReplaceFile(meta models.FileMeta, fileTitle string, nodes []parser.ParsedNode) error
	DeleteFile(path string) error
	QueryNodes(byMtimeDesc bool) ([]NodeRow, error)
	QueryNode(id string) (*NodeRow, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies NodeIndex at compile time.
var _ NodeIndex = (*DB)(nil)
