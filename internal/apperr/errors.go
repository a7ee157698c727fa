// Package apperr defines the error taxonomy shared across Ansuz layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// RetrievalError wraps a failure to execute the aggregating node query.
// It is fatal to the retrieval call; no partial results accompany it.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// DecodeError reports a node row that could not be decoded, naming the
// offending node. The whole retrieval call is aborted rather than silently
// dropping the row.
type DecodeError struct {
	NodeID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode node %s: %v", e.NodeID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FormatError reports a formatter failure on a specific node. Like
// DecodeError it aborts the whole call: a silently shortened candidate list
// is worse than a failed one for an interactive selector.
type FormatError struct {
	NodeID string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format node %s: %v", e.NodeID, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
