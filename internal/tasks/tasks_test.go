package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
	tu "github.com/atharvtrasi/playlist-stand-chart/internal/testing"
)

func exampleRaw() map[string]any {
	return map[string]any{
		chart.KeyBPM:          98.44,
		chart.KeyDanceability: 1.21,
		chart.KeyGenreCount:   4,
		chart.KeyDurationMs:   3900701,
		chart.KeyRelaxed:      0.43,
		chart.KeyPotential:    3,
	}
}

func maxRaw() map[string]any {
	return map[string]any{
		chart.KeyBPM:          250,
		chart.KeyDanceability: 3,
		chart.KeyGenreCount:   8,
		chart.KeyDurationMs:   1_440_000_000,
		chart.KeyRelaxed:      1,
		chart.KeyPotential:    6,
	}
}

func f64(v float64) *float64 { return &v }

func newEngine(t *testing.T) *BatchEngine {
	t.Helper()
	return NewBatchEngine(stands.Static(tu.ReferenceTable(t)), shared.NewLogger(&bytes.Buffer{}))
}

func TestPhase(t *testing.T) {
	tc := map[Phase]string{
		LoadTable:     "load_table",
		ChartPlaylist: "chart_playlist",
		Done:          "done",
		Phase(99):     "",
	}
	for p, want := range tc {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

func TestBatchEngine(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		t.Run("preserves input order", func(t *testing.T) {
			jobs := make([]Job, 0, 40)
			for i := range 40 {
				m := exampleRaw()
				if i%2 == 1 {
					m = maxRaw()
				}
				jobs = append(jobs, Job{ID: fmt.Sprintf("p%d", i), Metrics: m})
			}

			res, err := newEngine(t).Run(context.Background(), nil, jobs, BatchOpts{NumWorkers: 8})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if res.Total != 40 || res.Succeeded != 40 || res.Failed != 0 {
				t.Errorf("unexpected counts: %+v", res)
			}
			for i, r := range res.Results {
				if r.ID != fmt.Sprintf("p%d", i) {
					t.Fatalf("result %d has id %s", i, r.ID)
				}
				want := "Middle"
				if i%2 == 1 {
					want = "High"
				}
				if r.Result == nil || r.Result.Stand.Name != want {
					t.Errorf("result %d: expected %s, got %+v", i, want, r.Result)
				}
			}
		})

		t.Run("aggregates tracks", func(t *testing.T) {
			potential := 3
			jobs := []Job{{
				ID:        "tracks",
				Potential: &potential,
				Tracks: []chart.TrackAnalysis{
					{BPM: f64(98.44), Danceability: f64(1.21), RelaxedProbability: f64(0.43), Genre: "rock", DurationMs: 3900701},
					{Genre: "pop"},
					{Genre: "jazz"},
					{Genre: "folk"},
				},
			}}

			res, err := newEngine(t).Run(context.Background(), nil, jobs, BatchOpts{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if r := res.Results[0]; r.Result == nil || r.Result.Stand.Name != "Middle" {
				t.Errorf("expected Middle, got %+v", r)
			}
		})

		t.Run("reports failures per job", func(t *testing.T) {
			missing := exampleRaw()
			delete(missing, chart.KeyPotential)

			jobs := []Job{
				{ID: "ok", Metrics: exampleRaw()},
				{ID: "missing", Metrics: missing},
				{ID: "empty"},
				{Tracks: []chart.TrackAnalysis{{Genre: "rock"}}},
				{ID: "both", Metrics: exampleRaw(), Tracks: []chart.TrackAnalysis{{Genre: "rock"}}},
			}

			res, err := newEngine(t).Run(context.Background(), nil, jobs, BatchOpts{NumWorkers: 2})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if res.Succeeded != 1 || res.Failed != 4 {
				t.Errorf("expected 1 success and 4 failures, got %+v", res)
			}

			var verr *chart.ValidationError
			if !errors.As(res.Results[1].Err(), &verr) || verr.Fields[0] != chart.KeyPotential {
				t.Errorf("expected missing potential, got %v", res.Results[1].Err())
			}
			if !errors.Is(res.Results[2].Err(), shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", res.Results[2].Err())
			}
			if res.Results[3].ID != "#4" {
				t.Errorf("expected generated id #4, got %s", res.Results[3].ID)
			}
			if !strings.Contains(res.Results[4].Error, "both") {
				t.Errorf("unexpected error: %s", res.Results[4].Error)
			}
		})

		t.Run("mistyped metrics fail only their job", func(t *testing.T) {
			mistyped := exampleRaw()
			mistyped[chart.KeyBPM] = "fast"
			mistyped[chart.KeyPotential] = 2.5

			jobs := []Job{{ID: "ok", Metrics: exampleRaw()}, {ID: "mistyped", Metrics: mistyped}}
			res, err := newEngine(t).Run(context.Background(), nil, jobs, BatchOpts{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if res.Succeeded != 1 || res.Failed != 1 {
				t.Errorf("expected 1 success and 1 failure, got %+v", res)
			}
			if r := res.Results[0]; r.Result == nil || r.Result.Stand.Name != "Middle" {
				t.Errorf("expected Middle, got %+v", r)
			}

			var verr *chart.ValidationError
			if !errors.As(res.Results[1].Err(), &verr) {
				t.Fatalf("expected ValidationError, got %v", res.Results[1].Err())
			}
			want := []string{chart.KeyBPM, chart.KeyPotential}
			if !reflect.DeepEqual(verr.Invalid, want) {
				t.Errorf("Invalid = %v, want %v", verr.Invalid, want)
			}
		})

		t.Run("sends progress", func(t *testing.T) {
			prog := make(chan ProgressUpdate, 16)
			jobs := []Job{{ID: "a", Metrics: exampleRaw()}, {ID: "b", Metrics: maxRaw()}}

			if _, err := newEngine(t).Run(context.Background(), prog, jobs, BatchOpts{}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			close(prog)

			var phases []Phase
			for u := range prog {
				phases = append(phases, u.Phase)
			}
			if len(phases) != 4 || phases[0] != LoadTable || phases[3] != Done {
				t.Errorf("unexpected phases: %v", phases)
			}
		})

		t.Run("loads table once across workers", func(t *testing.T) {
			var loads atomic.Int32
			h := stands.NewHandle(func() (*stands.Table, error) {
				loads.Add(1)
				return tu.ReferenceTable(t), nil
			})
			engine := NewBatchEngine(h, shared.NewLogger(&bytes.Buffer{}))

			jobs := []Job{{Metrics: exampleRaw()}, {Metrics: exampleRaw()}, {Metrics: exampleRaw()}}
			for range 3 {
				if _, err := engine.Run(context.Background(), nil, jobs, BatchOpts{NumWorkers: 3}); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
			}
			if n := loads.Load(); n != 1 {
				t.Errorf("expected 1 load, got %d", n)
			}
		})

		t.Run("table load failure", func(t *testing.T) {
			h := stands.NewHandle(func() (*stands.Table, error) { return nil, shared.ErrEmptyCatalog })
			engine := NewBatchEngine(h, shared.NewLogger(&bytes.Buffer{}))

			_, err := engine.Run(context.Background(), nil, []Job{{Metrics: exampleRaw()}}, BatchOpts{})
			if !errors.Is(err, shared.ErrEmptyCatalog) {
				t.Errorf("expected ErrEmptyCatalog, got %v", err)
			}
		})

		t.Run("cancelled context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			jobs := []Job{{Metrics: exampleRaw()}, {Metrics: exampleRaw()}}
			_, err := newEngine(t).Run(ctx, nil, jobs, BatchOpts{})
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	})
}

func TestDecodeJobs(t *testing.T) {
	t.Run("bad element fails alone", func(t *testing.T) {
		data := `[
			{"id": "ok", "metrics": {"averageBPM":98.44,"averageDanceability":1.21,"uniqueGenreCount":4,
				"spotifyTotalDurationMs":3900701,"averageRelaxedProbability":0.43,"potential":3}},
			{"id": "mistyped", "metrics": {"averageBPM":"fast","potential":2.5}},
			{"id": "bad tracks", "tracks": [{"bpm":"fast"}], "potential": 3},
			{"id": "bad potential", "tracks": [{"genre":"rock"}], "potential": 2.5}
		]`

		jobs, err := DecodeJobs([]byte(data))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(jobs) != 4 {
			t.Fatalf("expected 4 jobs, got %d", len(jobs))
		}

		res, err := newEngine(t).Run(context.Background(), nil, jobs, BatchOpts{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Succeeded != 1 || res.Failed != 3 {
			t.Errorf("expected 1 success and 3 failures, got %+v", res)
		}

		var verr *chart.ValidationError
		if !errors.As(res.Results[1].Err(), &verr) || len(verr.Invalid) != 2 {
			t.Errorf("expected two invalid keys, got %v", res.Results[1].Err())
		}
		for _, r := range res.Results[2:] {
			if !errors.Is(r.Err(), shared.ErrInvalidInput) {
				t.Errorf("%s: expected ErrInvalidInput, got %v", r.ID, r.Err())
			}
		}
		if res.Results[3].ID != "bad potential" {
			t.Errorf("expected id to survive a decode error, got %q", res.Results[3].ID)
		}
	})

	t.Run("not an array", func(t *testing.T) {
		if _, err := DecodeJobs([]byte(`{"id":"x"}`)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
