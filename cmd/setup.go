package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/repositories"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// SetupConfig writes the default configuration file to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if r.configPath == "" {
		return fmt.Errorf("%w: --config path is empty", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	r.logger.Info("config file created", "path", r.configPath)
	return nil
}

// SetupDatabase runs migrations and seeds the Stand catalog from the bundled dataset or --dataset.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var table *stands.Table
	if path := cmd.String("dataset"); path != "" {
		table, err = stands.LoadFile(path)
	} else {
		table, err = stands.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	repo := repositories.NewStandRepository(db)
	if _, err := repo.Seed(ctx, table); err != nil {
		return fmt.Errorf("failed to seed stands: %w", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v (%d stands)", r.config.Database.Path, n)
	return nil
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	return nil
}
