// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the notes store as tools for LLM integration.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mininotes/internal/apperr"
	"github.com/starford/mininotes/internal/storage"
)

// Server wraps the MCP server with notes tools.
type Server struct {
	mcp   *server.MCPServer
	notes storage.Provider
}

// New creates a new MCP server with all tools registered.
// notes may be the in-process store or an API client proxying a remote server.
func New(notes storage.Provider, version string) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"Mini Notes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in creation order. With a query, only notes whose title "+
			"or content contains it (case-insensitive) are returned."),
		mcp.WithString("query", mcp.Description("Optional search text; omit or leave empty to list everything")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new immutable note. Read "+NoteRulesURI+" for the accepted shape."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Non-empty title, at most 200 characters")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Non-empty note body")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Fetch a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id as returned by create_note or list_notes")),
	), s.getNote)

	s.mcp.AddResource(
		mcp.NewResource(NoteRulesURI, "Note Rules",
			mcp.WithResourceDescription("Validation and search rules for Mini Notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteRules,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns a streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.notes.List(ctx, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(apperr.MessageOf(err)), nil
	}
	return jsonResult(notes)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Append(ctx, title, content)
	if err != nil {
		return mcp.NewToolResultError(apperr.MessageOf(err)), nil
	}
	return jsonResult(note)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(apperr.MessageOf(err)), nil
	}
	return jsonResult(note)
}

func (s *Server) readNoteRules(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteRulesURI,
			MIMEType: "text/markdown",
			Text:     NoteRules,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
