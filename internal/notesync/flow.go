// Package notesync keeps a client-side projection of the server's notes in step with the API.
//
// A Flow tracks two independent operations, fetch and create. Each moves from idle to
// pending to succeeded or failed; starting an operation clears the previous error.
// Fetch responses carry a sequence number and a response older than the last applied
// one is dropped, so overlapping searches settle on the newest request rather than on
// whichever response happens to arrive last.
package notesync

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/models"
)

// MsgRequired is stored when a create is attempted with a blank field.
const MsgRequired = "Title and content are required"

// API is the subset of the notes API the flow depends on.
type API interface {
	ListNotes(ctx context.Context, query string) ([]models.Note, error)
	CreateNote(ctx context.Context, title, content string) (models.Note, error)
}

// State is a snapshot of the client's view of the notes collection.
// Items reflects the most recently applied fetch plus any optimistic appends since.
// Creating stays true while any create is awaiting a response.
type State struct {
	Items    []models.Note
	Loading  bool
	Creating bool
	Error    string
	Query    string
}

// Option configures a Flow.
type Option func(*Flow)

// WithOnChange registers an observer called with a snapshot after every state change.
func WithOnChange(fn func(State)) Option {
	return func(f *Flow) {
		f.onChange = fn
	}
}

// WithLogger sets the logger used for flow diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// Flow is a state container mirroring the server's notes. It is safe for concurrent use.
type Flow struct {
	api      API
	onChange func(State)
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	issued   uint64
	applied  uint64
	inFlight int // creates awaiting a response
}

// New creates a flow with empty state.
func New(api API, opts ...Option) *Flow {
	f := &Flow{
		api:    api,
		logger: slog.Default(),
		state:  State{Items: []models.Note{}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) snapshotLocked() State {
	s := f.state
	s.Items = slices.Clone(f.state.Items)
	if s.Items == nil {
		s.Items = []models.Note{}
	}
	return s
}

// update applies fn under the lock and notifies the observer outside it.
func (f *Flow) update(fn func(s *State) bool) {
	f.mu.Lock()
	changed := fn(&f.state)
	var snap State
	if changed && f.onChange != nil {
		snap = f.snapshotLocked()
	}
	f.mu.Unlock()

	if changed && f.onChange != nil {
		f.onChange(snap)
	}
}

// Fetch loads notes matching query, or all notes when query is blank, and replaces
// Items with the result. On failure Items is left as it was and the message is stored.
// The returned error is the API error; it is nil when the response was superseded.
func (f *Flow) Fetch(ctx context.Context, query string) error {
	var seq uint64
	f.update(func(s *State) bool {
		f.issued++
		seq = f.issued
		s.Query = query
		s.Loading = true
		s.Error = ""
		return true
	})

	if strings.TrimSpace(query) == "" {
		query = ""
	}
	notes, err := f.api.ListNotes(ctx, query)

	stale := false
	f.update(func(s *State) bool {
		if seq < f.applied {
			stale = true
			return false
		}
		f.applied = seq
		if seq == f.issued {
			s.Loading = false
		}
		if err != nil {
			s.Error = apperr.MessageOf(err)
			return true
		}
		if notes == nil {
			notes = []models.Note{}
		}
		s.Items = notes
		return true
	})

	if stale {
		f.logger.Debug("notesync: dropped stale fetch response", slog.Uint64("seq", seq))
		return nil
	}
	return err
}

// Refresh re-runs Fetch with the currently active query.
// Create calls it after every successful append.
func (f *Flow) Refresh(ctx context.Context) error {
	return f.Fetch(ctx, f.Snapshot().Query)
}

// CanSubmit reports whether a create with these fields would be sent to the server.
func CanSubmit(title, content string) bool {
	return strings.TrimSpace(title) != "" && strings.TrimSpace(content) != ""
}

// Create sends a new note to the server. Blank fields are rejected without a network
// call and without touching state. On success the note is appended to Items at once,
// then the flow refreshes with the active query so Items converges to what the server
// would return for that search. A failure of that re-fetch is recorded in state only.
func (f *Flow) Create(ctx context.Context, title, content string) (models.Note, error) {
	if !CanSubmit(title, content) {
		return models.Note{}, apperr.New(apperr.KindValidation, MsgRequired)
	}

	f.update(func(s *State) bool {
		f.inFlight++
		s.Creating = true
		s.Error = ""
		return true
	})

	note, err := f.api.CreateNote(ctx, title, content)

	f.update(func(s *State) bool {
		f.inFlight--
		s.Creating = f.inFlight > 0
		if err != nil {
			s.Error = apperr.MessageOf(err)
			return true
		}
		s.Items = append(slices.Clone(s.Items), note)
		return true
	})
	if err != nil {
		return models.Note{}, err
	}

	if ferr := f.Refresh(ctx); ferr != nil {
		f.logger.Warn("notesync: re-sync after create failed", slog.String("error", ferr.Error()))
	}
	return note, nil
}

// DismissError clears the stored error and nothing else.
func (f *Flow) DismissError() {
	f.update(func(s *State) bool {
		if s.Error == "" {
			return false
		}
		s.Error = ""
		return true
	})
}
