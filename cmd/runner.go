package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/repositories"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	stands     *stands.Handle
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Stands     *stands.Handle // reference table source; built from the config when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		stands:     opts.Stands,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		chartCommand, batchCommand, standsCommand, setupCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config, applies the log level, and prepares the
// reference table handle. A missing config file falls back to defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	config, err := shared.LoadOrDefault(r.configPath)
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	if r.stands == nil {
		r.stands = r.newStandsHandle(ctx)
	}
	return ctx, nil
}

// newStandsHandle selects the reference table source from the config. Nothing is read until the first
// command asks for the table.
func (r *Runner) newStandsHandle(ctx context.Context) *stands.Handle {
	cfg := r.config

	switch cfg.Stands.Source {
	case shared.SourceDatabase:
		return stands.NewHandle(func() (*stands.Table, error) {
			r.logger.Debug("loading stands from database", "path", cfg.Database.Path)
			db, err := shared.OpenDatabase(cfg.Database)
			if err != nil {
				return nil, err
			}
			defer db.Close()
			return repositories.NewStandRepository(db).Loader(ctx)()
		})
	default:
		if cfg.Stands.Dataset != "" {
			return stands.NewHandle(func() (*stands.Table, error) {
				r.logger.Debug("loading stands from file", "path", cfg.Stands.Dataset)
				return stands.LoadFile(cfg.Stands.Dataset)
			})
		}
		return stands.NewHandle(stands.Load)
	}
}

// table returns the reference table, building the default handle if [Runner.Before] did not run.
func (r *Runner) table(ctx context.Context) (*stands.Table, error) {
	if r.stands == nil {
		r.stands = r.newStandsHandle(ctx)
	}
	t, err := r.stands.Table()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}
	return t, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
