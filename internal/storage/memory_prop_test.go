package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/models"
)

func propStore() *Memory {
	return NewMemory(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func fieldGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 .,!?]{0,40}`)
}

func blankGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[ \t\n]{0,5}`)
}

func TestPropertyAppendThenListContainsNote(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := propStore()
		ctx := context.Background()
		title := fieldGenerator().Draw(t, "title")
		content := fieldGenerator().Draw(t, "content")

		before := time.Now().UTC()
		note, err := s.Append(ctx, title, content)
		if err != nil {
			t.Fatalf("Append(%q, %q): %v", title, content, err)
		}
		if note.CreatedAt.Before(before) {
			t.Fatalf("created_at %v before %v", note.CreatedAt, before)
		}

		all, _ := s.List(ctx, "")
		found := 0
		for _, n := range all {
			if n.ID == note.ID {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("note appears %d times, want 1", found)
		}
	})
}

func TestPropertyBlankFieldsRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := propStore()
		ctx := context.Background()
		n := rapid.IntRange(0, 5).Draw(t, "seed")
		for i := 0; i < n; i++ {
			_, _ = s.Append(ctx, fieldGenerator().Draw(t, "t"), fieldGenerator().Draw(t, "c"))
		}
		before := s.Len()

		title, content := fieldGenerator().Draw(t, "title"), blankGenerator().Draw(t, "blank")
		if rapid.Bool().Draw(t, "swap") {
			title, content = content, title
		}
		_, err := s.Append(ctx, title, content)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("Append(%q, %q) err = %v, want validation", title, content, err)
		}
		if s.Len() != before {
			t.Fatalf("len changed from %d to %d", before, s.Len())
		}
	})
}

func TestPropertyListFiltersExactly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := propStore()
		ctx := context.Background()
		n := rapid.IntRange(0, 10).Draw(t, "n")
		for i := 0; i < n; i++ {
			_, _ = s.Append(ctx, fieldGenerator().Draw(t, "title"), fieldGenerator().Draw(t, "content"))
		}
		query := rapid.StringMatching(`[A-Za-z0-9 .,!?\t]{1,4}`).Draw(t, "query")

		all, _ := s.List(ctx, "")
		var want []models.Note
		q := strings.ToLower(query)
		for _, note := range all {
			if strings.Contains(strings.ToLower(note.Title), q) || strings.Contains(strings.ToLower(note.Content), q) {
				want = append(want, note)
			}
		}

		got, _ := s.List(ctx, query)
		if len(got) != len(want) {
			t.Fatalf("List(%q) len = %d, want %d", query, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("List(%q)[%d] = %+v, want %+v", query, i, got[i], want[i])
			}
		}

		empty, _ := s.List(ctx, "")
		if len(empty) != len(all) {
			t.Fatalf("List(\"\") len = %d, want %d", len(empty), len(all))
		}
	})
}
