package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/tasks"
)

// Batch charts every playlist in --input and prints a JSON summary.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("input")
	workers := cmd.Int("workers")
	pretty := cmd.Bool("pretty")

	data, err := r.readInput(path)
	if err != nil {
		return err
	}

	jobs, err := tasks.DecodeJobs(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if _, err := r.table(ctx); err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	res, err := tasks.NewBatchEngine(r.stands, r.logger).Run(ctx, prog, jobs, tasks.BatchOpts{NumWorkers: workers})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.logger.Info("batch complete", "total", res.Total, "succeeded", res.Succeeded, "failed", res.Failed)
	return r.writeJSON(res, pretty)
}
