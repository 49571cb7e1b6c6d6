package storage

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/models"
)

// AppendHook is called after a note has been stored.
type AppendHook func(note models.Note)

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) MemoryOption {
	return func(m *Memory) {
		m.newID = newID
	}
}

// WithLogger sets the logger used for store activity.
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(m *Memory) {
		m.logger = logger
	}
}

// WithAppendHook registers a hook invoked after every successful append.
func WithAppendHook(hook AppendHook) MemoryOption {
	return func(m *Memory) {
		m.hooks = append(m.hooks, hook)
	}
}

// Memory is an append-only note collection held in process memory.
// It is safe for concurrent use. Notes are never edited or evicted.
type Memory struct {
	mu    sync.RWMutex
	notes []models.Note
	index map[string]int

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	hooks  []AppendHook
}

// NewMemory creates an empty store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		index:  make(map[string]int),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Append validates and stores a new note.
func (m *Memory) Append(_ context.Context, title, content string) (models.Note, error) {
	in := models.NewNote{Title: title, Content: content}.Normalize()
	if err := in.Validate(); err != nil {
		return models.Note{}, apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}

	note := models.Note{
		ID:        m.newID(),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: m.now().UTC(),
	}

	m.mu.Lock()
	m.index[note.ID] = len(m.notes)
	m.notes = append(m.notes, note)
	m.mu.Unlock()

	m.logger.Info("note created", slog.String("id", note.ID), slog.String("title", note.Title))

	for _, hook := range m.hooks {
		hook(note)
	}
	return note, nil
}

// List returns all notes, or those whose title or content contains query case-insensitively.
// Only the empty query means no filter; whitespace is matched like any other text.
// The result is a copy in insertion order and never nil.
func (m *Memory) List(_ context.Context, query string) ([]models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if query == "" {
		out := make([]models.Note, len(m.notes))
		copy(out, m.notes)
		m.logger.Debug("listing all notes", slog.Int("count", len(out)))
		return out, nil
	}

	needle := strings.ToLower(query)
	out := []models.Note{}
	for _, n := range m.notes {
		if matches(n, needle) {
			out = append(out, n)
		}
	}
	m.logger.Debug("searched notes", slog.String("query", query), slog.Int("results", len(out)))
	return out, nil
}

// Get returns the note with the given id.
func (m *Memory) Get(_ context.Context, id string) (models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return models.Note{}, apperr.New(apperr.KindNotFound, "Note '"+id+"' not found")
	}
	return m.notes[i], nil
}

// Len returns the number of stored notes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}

func matches(n models.Note, needle string) bool {
	return strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle)
}
