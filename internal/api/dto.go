package api

import (
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/nodeservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"---\nid: n1\ntitle: Hello\n---\nWorld" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"---\nid: n1\ntitle: Updated\n---\nContent" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = nodeservice.NoteDetail

// CandidateListResponse wraps a candidate listing.
type CandidateListResponse struct {
	Candidates []models.Candidate `json:"candidates" validate:"required"`
	Total      int                `json:"total" example:"42" validate:"required"`
}

// TemplateListResponse lists the configured display-template names.
type TemplateListResponse struct {
	Templates []string `json:"templates" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string `json:"id" example:"node-1" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
