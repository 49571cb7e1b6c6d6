// Package models defines the domain types for Mini Notes.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxTitleLength is the longest accepted title, in characters, after trimming.
const MaxTitleLength = 200

// Note is an immutable note as stored and served by the API.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote is the payload for creating a note.
type NewNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Normalize returns a copy with surrounding whitespace removed from both fields.
func (n NewNote) Normalize() NewNote {
	return NewNote{
		Title:   strings.TrimSpace(n.Title),
		Content: strings.TrimSpace(n.Content),
	}
}

// Validate checks a normalized payload. Blank fields and over-long titles are rejected.
func (n NewNote) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title,
			validation.Required.Error("must not be empty"),
			validation.RuneLength(0, MaxTitleLength).Error("must be at most 200 characters"),
		),
		validation.Field(&n.Content,
			validation.Required.Error("must not be empty"),
		),
	)
}
