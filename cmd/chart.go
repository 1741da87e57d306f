package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/formatter"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// Chart validates the playlist metrics, matches them against the reference table, and renders the result.
func (r *Runner) Chart(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	top := cmd.Int("top")
	if top < 1 {
		return fmt.Errorf("%w: --top must be at least 1", shared.ErrInvalidFlag)
	}

	raw, err := r.readMetrics(cmd)
	if err != nil {
		return err
	}

	m, err := raw.Validate()
	if err != nil {
		return err
	}

	table, err := r.table(ctx)
	if err != nil {
		return err
	}

	var ranked []chart.Result
	if top == 1 {
		res, err := chart.ComputeMatch(m, table)
		if err != nil {
			return err
		}
		ranked = []chart.Result{res}
	} else if ranked, err = chart.Rank(chart.Normalize(m), table, top); err != nil {
		return err
	}

	report := formatter.NewReport(ranked)
	r.logger.Debug("matched", "stand", report.Stand.Name, "distance", report.Distance)

	data, err := formatter.Render(format, report)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// readMetrics merges --input (if any) with the metric flags. Flags win; metrics supplied by neither stay
// missing so validation can name them.
func (r *Runner) readMetrics(cmd *cli.Command) (chart.RawMetrics, error) {
	var raw chart.RawMetrics

	if path := cmd.String("input"); path != "" {
		data, err := r.readInput(path)
		if err != nil {
			return raw, err
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return raw, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
		}

		if raw, err = chart.DecodeRawMetrics(m); err != nil {
			return raw, err
		}
	}

	floats := []struct {
		flag string
		dst  **float64
	}{
		{"bpm", &raw.AverageBPM},
		{"danceability", &raw.AverageDanceability},
		{"genres", &raw.UniqueGenreCount},
		{"duration-ms", &raw.SpotifyTotalDurationMs},
		{"relaxed", &raw.AverageRelaxedProbability},
	}
	for _, f := range floats {
		if cmd.IsSet(f.flag) {
			v := cmd.Float(f.flag)
			*f.dst = &v
		}
	}

	if cmd.IsSet("potential") {
		p := cmd.Int("potential")
		raw.Potential = &p
	}

	return raw, nil
}

func (r *Runner) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}
