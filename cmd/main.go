package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "standchart",
		Usage:   "Match a playlist's audio profile to the closest Stand",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config file",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}
