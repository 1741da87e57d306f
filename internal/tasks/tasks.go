package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// ProgressUpdate represents a progress event during a batch run.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	LoadTable Phase = iota
	ChartPlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case LoadTable:
		return "load_table"
	case ChartPlaylist:
		return "chart_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

// Job is one playlist to chart. Exactly one of Metrics or Tracks should be set; Tracks are aggregated
// with Potential before matching. Metrics is the decoded JSON object and is checked with
// [chart.DecodeRawMetrics] when the job runs.
type Job struct {
	ID        string                `json:"id"`
	Metrics   map[string]any        `json:"metrics,omitempty"`
	Tracks    []chart.TrackAnalysis `json:"tracks,omitempty"`
	Potential *int                  `json:"potential,omitempty"`
	err       error
}

// DecodeJobs reads a JSON array of jobs. An element that fails to decode becomes a job that fails with
// the decode error; only input that is not an array is rejected outright.
func DecodeJobs(data []byte) ([]Job, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	jobs := make([]Job, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &jobs[i]); err != nil {
			var ref struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(elem, &ref)
			jobs[i] = Job{ID: ref.ID, err: fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)}
		}
	}
	return jobs, nil
}

// JobResult is the outcome of one [Job].
type JobResult struct {
	ID     string        `json:"id"`
	Result *chart.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	err    error
}

// Err returns the failure behind [JobResult.Error], if any.
func (r JobResult) Err() error {
	return r.err
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []JobResult `json:"results"`
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
