// Package storage defines the note store abstraction and its in-memory implementation.
package storage

import (
	"context"

	"github.com/starford/mininotes/internal/models"
)

// Provider is the interface for note store operations.
type Provider interface {
	// Append validates and stores a new note, returning it with id and timestamp assigned.
	// Surrounding whitespace is trimmed from title and content before they are stored.
	Append(ctx context.Context, title, content string) (models.Note, error)
	// List returns notes in insertion order, filtered by a case-insensitive substring of
	// title or content when query is not blank.
	List(ctx context.Context, query string) ([]models.Note, error)
	// Get returns the note with the given id.
	Get(ctx context.Context, id string) (models.Note, error)
}

// Verify *Memory satisfies Provider at compile time.
var _ Provider = (*Memory)(nil)
