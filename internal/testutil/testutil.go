// Package testutil provides shared test helpers for spinning up stores and API servers.
package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/starford/mininotes/internal/api"
	"github.com/starford/mininotes/internal/storage"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore creates an empty in-memory store with logging silenced.
func TestStore(t *testing.T, opts ...storage.MemoryOption) *storage.Memory {
	t.Helper()
	return storage.NewMemory(append([]storage.MemoryOption{storage.WithLogger(DiscardLogger())}, opts...)...)
}

// TestServer starts an httptest server exposing the API over a fresh store.
// The server is closed automatically when the test ends.
func TestServer(t *testing.T) (*httptest.Server, *storage.Memory) {
	t.Helper()
	store := TestStore(t)
	srv := httptest.NewServer(api.NewRouter(store, []string{"*"}, nil, nil))
	t.Cleanup(srv.Close)
	return srv, store
}
