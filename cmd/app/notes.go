package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/mininotes/internal"
	"github.com/starford/mininotes/internal/models"
	"github.com/starford/mininotes/internal/notesync"
)

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Work with notes on a running server",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all notes",
				Flags:  []cli.Flag{jsonFlag()},
				Action: listNotes,
			},
			{
				Name:      "search",
				Usage:     "List notes whose title or content contains the query",
				ArgsUsage: "<query>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    searchNotes,
			},
			{
				Name:  "create",
				Usage: "Create a note, then show the re-synced list for --query",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Note content"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Active search to re-sync against"},
					jsonFlag(),
				},
				Action: createNote,
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print notes as JSON"}
}

// newFlow builds a sync flow against the configured server. Progress is logged at debug level.
func newFlow(cmd *cli.Command) (*notesync.Flow, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return notesync.New(c,
		notesync.WithLogger(logger),
		notesync.WithOnChange(func(s notesync.State) {
			logger.Debug("state",
				slog.Int("items", len(s.Items)),
				slog.Bool("loading", s.Loading),
				slog.Bool("creating", s.Creating),
				slog.String("query", s.Query),
				slog.String("error", s.Error))
		}),
	), nil
}

func listNotes(ctx context.Context, cmd *cli.Command) error {
	return fetchAndPrint(ctx, cmd, "")
}

func searchNotes(ctx context.Context, cmd *cli.Command) error {
	return fetchAndPrint(ctx, cmd, strings.Join(cmd.Args().Slice(), " "))
}

func fetchAndPrint(ctx context.Context, cmd *cli.Command, query string) error {
	flow, err := newFlow(cmd)
	if err != nil {
		return err
	}
	_ = flow.Fetch(ctx, query)
	return render(cmd.Root().Writer, flow.Snapshot(), cmd.Bool("json"))
}

func createNote(ctx context.Context, cmd *cli.Command) error {
	title, content := cmd.String("title"), cmd.String("content")
	if !notesync.CanSubmit(title, content) {
		return errors.New(notesync.MsgRequired)
	}

	flow, err := newFlow(cmd)
	if err != nil {
		return err
	}
	if query := cmd.String("query"); query != "" {
		if err := flow.Fetch(ctx, query); err != nil {
			return render(cmd.Root().Writer, flow.Snapshot(), cmd.Bool("json"))
		}
	}

	note, err := flow.Create(ctx, title, content)
	if err != nil {
		return render(cmd.Root().Writer, flow.Snapshot(), cmd.Bool("json"))
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "created %s\n", note.ID)
	return render(cmd.Root().Writer, flow.Snapshot(), cmd.Bool("json"))
}

// render prints the state's items, or returns its error message.
func render(w io.Writer, s notesync.State, asJSON bool) error {
	if s.Error != "" {
		return errors.New(s.Error)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Items)
	}
	return renderTable(w, s.Items)
}

func renderTable(w io.Writer, notes []models.Note) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTITLE\tCONTENT")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.CreatedAt.Format(time.RFC3339), n.Title, preview(n.Content, 60))
	}
	return tw.Flush()
}

func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
