// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mininotes/internal/api"
	"github.com/starford/mininotes/internal/mcpserver"
	"github.com/starford/mininotes/internal/sse"
	"github.com/starford/mininotes/internal/storage"
)

// NewLogger builds the structured JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Run starts the HTTP server with the given options and blocks until shutdown.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := NewLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("app_name", cfg.App.Name),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Any("cors_origins", cfg.App.CORS.AllowedOrigins),
		slog.Bool("mcp_enabled", cfg.MCP.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker announces every stored note.
	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()

	store := storage.NewMemory(
		storage.WithLogger(logger),
		storage.WithAppendHook(broker.PublishNote),
	)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(cfg, app.version, store, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting "+cfg.App.Name, slog.String("version", app.version))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down "+cfg.App.Name, slog.Int("notes", store.Len()))

		// Close event streams first so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newRouter wires the request middleware chain around the API routes.
func newRouter(cfg *Config, version string, store *storage.Memory, broker *sse.Broker) http.Handler {
	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		mcpHandler = mcpserver.New(store, version).HTTPHandler()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/", api.NewRouter(store, cfg.App.CORS.AllowedOrigins, broker, mcpHandler))
	return r
}
