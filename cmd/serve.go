package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/server"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, cfg.Port)
	}

	// Fail fast on a broken dataset instead of on the first request.
	if _, err := r.table(ctx); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPI(r.stands, logger)
	srv := server.New(cfg, server.NewRouter(cfg, api, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
