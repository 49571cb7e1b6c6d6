package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mininotes/internal"
	"github.com/starford/mininotes/internal/client"
	"github.com/starford/mininotes/internal/mcpserver"
	pkgconfig "github.com/starford/mininotes/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Flags and env win over the file.
	if cmd.IsSet("api-url") {
		cfg.Client.BaseURL = cmd.String("api-url")
		if err := cfg.Client.Validate(); err != nil {
			return nil, fmt.Errorf("invalid api url: %w", err)
		}
	}
	return cfg, nil
}

func newClient(cfg *internal.Config) (*client.Client, error) {
	return client.New(cfg.Client.BaseURL, client.WithTimeout(cfg.Client.Timeout))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// serveMCP exposes a running server's notes to an MCP host over stdio.
// Stdout carries the protocol, so logs go to stderr.
func serveMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(internal.NewLogger(os.Stderr, cfg.App.LogLevel))

	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	slog.Info("MCP stdio server proxying API", slog.String("base_url", c.BaseURL()))
	return mcpserver.New(c, version).ServeStdio()
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mininotes",
		Usage:   "In-memory notes API with keyword search, plus a client for it",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional; defaults apply when missing)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the API used by client commands",
				Sources: cli.EnvVars("APP_API_BASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio, backed by a running API server",
				Action: serveMCP,
			},
			notesCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
