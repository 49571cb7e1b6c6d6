package api

import "github.com/starford/mininotes/internal/models"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest = models.NewNote

// Note is the response type for a single note (aliased from the domain layer).
type Note = models.Note

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
