// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/formatter"
)

// chartCommand computes the closest Stand for a playlist summary.
func chartCommand(r *Runner) *cli.Command {
	formats := make([]string, 0, len(formatter.Formats()))
	for _, f := range formatter.Formats() {
		formats = append(formats, string(f))
	}

	return &cli.Command{
		Name:  "chart",
		Usage: "Compute the Stand whose stats are closest to a playlist",
		Description: "Metrics come from flags, or from a JSON object read with --input (use - for stdin).\n" +
			"Flags override values read from --input. Every metric must be supplied.",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "bpm",
				Usage: fmt.Sprintf("Average tempo in BPM (%s)", chart.KeyBPM),
			},
			&cli.FloatFlag{
				Name:  "danceability",
				Usage: fmt.Sprintf("Average danceability, 0-3 (%s)", chart.KeyDanceability),
			},
			&cli.FloatFlag{
				Name:  "genres",
				Usage: fmt.Sprintf("Number of distinct genres (%s)", chart.KeyGenreCount),
			},
			&cli.FloatFlag{
				Name:  "duration-ms",
				Usage: fmt.Sprintf("Total duration in milliseconds (%s)", chart.KeyDurationMs),
			},
			&cli.FloatFlag{
				Name:  "relaxed",
				Usage: fmt.Sprintf("Average relaxed probability, 0-1 (%s)", chart.KeyRelaxed),
			},
			&cli.IntFlag{
				Name:  "potential",
				Usage: fmt.Sprintf("Self-rated potential, 1-6 (%s)", chart.KeyPotential),
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read metrics from a JSON file, or - for stdin",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + strings.Join(formats, ", "),
				Value:   string(formatter.FormatText),
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of Stands to list, the match included",
				Value: 1,
			},
		},
		Action: r.Chart,
	}
}

// batchCommand charts many playlists from one JSON file.
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Chart a JSON array of playlists concurrently",
		Description: "Each element is {\"id\": ..., \"metrics\": {...}} or {\"id\": ..., \"tracks\": [...], \"potential\": n}.\n" +
			"Failures are reported per playlist and do not stop the batch.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "JSON file with the playlists, or - for stdin",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Batch,
	}
}

// standsCommand inspects the reference table.
func standsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stands",
		Usage: "Reference table operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every Stand with its grades",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV with numeric scores",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.StandsList,
			},
			{
				Name:  "show",
				Usage: "Show one Stand by name",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.StandsShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a default configuration file to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Run migrations and seed the Stand catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dataset",
						Usage: "CSV dataset to seed from instead of the bundled one",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the chart API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host; overrides server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port; overrides server.port",
			},
		},
		Action: r.Serve,
	}
}
