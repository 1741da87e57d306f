package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/formatter"
	"github.com/atharvtrasi/playlist-stand-chart/internal/repositories"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// StandsList prints the reference table as grades, CSV, or JSON.
func (r *Runner) StandsList(ctx context.Context, cmd *cli.Command) error {
	useCSV := cmd.Bool("csv")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if useCSV && useJSON {
		return fmt.Errorf("%w: cannot specify both --csv and --json", shared.ErrInvalidArgument)
	}

	table, err := r.table(ctx)
	if err != nil {
		return err
	}

	switch {
	case useCSV:
		data, err := formatter.StandsToCSV(table)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case useJSON:
		rows := make([]stands.Row, 0, table.Len())
		for row := range table.Rows() {
			rows = append(rows, row)
		}
		return r.writeJSON(rows, pretty)
	default:
		return r.writeBytes(formatter.StandsToText(table))
	}
}

// StandsShow prints one row of the reference table.
func (r *Runner) StandsShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: stand name is required", shared.ErrMissingArgument)
	}

	row, err := r.lookupStand(ctx, name)
	if err != nil {
		return err
	}

	if err := r.writePlain("%s\n", row.Name); err != nil {
		return err
	}
	for _, f := range stands.Features() {
		v := row.Features.At(f)
		if err := r.writePlain("  %-12s %6.2f  %s\n", f, v, stands.Grade(v)); err != nil {
			return err
		}
	}
	return nil
}

// lookupStand finds a row by name, querying the catalog directly when it is the configured source.
func (r *Runner) lookupStand(ctx context.Context, name string) (stands.Row, error) {
	name = strings.TrimSpace(name)

	if r.config.Stands.Source == shared.SourceDatabase {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return stands.Row{}, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return repositories.NewStandRepository(db).Get(ctx, name)
	}

	table, err := r.table(ctx)
	if err != nil {
		return stands.Row{}, err
	}
	row, ok := table.Lookup(name)
	if !ok {
		return stands.Row{}, fmt.Errorf("%w: %s", shared.ErrStandMissing, name)
	}
	return row, nil
}
