// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the catalog database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// syncCommand handles catalog synchronization operations
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize the local catalog with the remote service",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a full Jamendo catalog synchronization",
				Action: r.SyncRun,
			},
			{
				Name:  "runs",
				Usage: "List recorded synchronization runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "Only show runs of this service (e.g. Jamendo)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SyncRuns,
			},
		},
	}
}

// searchCommand searches the local catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the local catalog for songs, albums or artists",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "phrase",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "What to search for: songs, albums or artists",
				Value:   "songs",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// exportCommand exports catalog songs to a file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export catalog songs to CSV, Markdown, plain text or JSON",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "phrase",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, text or json",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file or directory path",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title of the export",
				Value: "catalog",
			},
		},
		Action: r.Export,
	}
}

// serveCommand runs the catalog web service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides configuration)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides configuration)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive catalog browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"browse", "ui"},
		Usage:   "Launch interactive TUI for browsing and synchronizing the catalog",
		Action:  r.TUI,
	}
}
