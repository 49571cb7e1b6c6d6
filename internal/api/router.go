package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mininotes/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// allowedOrigins configures CORS for the browser client.
// sseHandler, if non-nil, is mounted at GET /events.
// mcpHandler, if non-nil, is mounted at /mcp for every method.
func NewRouter(store storage.Provider, allowedOrigins []string, sseHandler, mcpHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(normalizeOrigins(allowedOrigins)))

	r.Get("/health", h.Health)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	if mcpHandler != nil {
		r.Handle("/mcp", mcpHandler)
	}

	return r
}
