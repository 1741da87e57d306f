package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

const (
	defaultWorkers = 4
	maxWorkers     = 32
)

// BatchOpts configures a batch run.
type BatchOpts struct {
	NumWorkers int // Concurrent workers (default: 4, max: 32)
}

// BatchEngine charts many playlists against one reference table.
type BatchEngine struct {
	stands *stands.Handle
	logger *log.Logger
}

// NewBatchEngine creates a [BatchEngine] reading its table from h.
func NewBatchEngine(h *stands.Handle, logger *log.Logger) *BatchEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BatchEngine{stands: h, logger: logger}
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result JobResult
}

// Run charts every job with a worker pool and returns results in input order.
func (e *BatchEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, jobs []Job, opts BatchOpts) (*BatchResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers)

	sendProgress(prog, ProgressUpdate{Phase: LoadTable, Step: 1, Total: 1, Message: "Loading reference table..."})
	table, err := e.stands.Table()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference table: %w", err)
	}

	result := &BatchResult{Total: len(jobs), Results: make([]JobResult, len(jobs))}

	queue := make(chan indexedJob, len(jobs))
	results := make(chan indexedResult, len(jobs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.worker(ctx, &wg, table, queue, results)
	}

	for i, job := range jobs {
		queue <- indexedJob{index: i, job: job}
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res.result

		msg := fmt.Sprintf("Charted %s", res.result.ID)
		if res.result.err != nil {
			result.Failed++
			msg = fmt.Sprintf("Failed %s: %v", res.result.ID, res.result.err)
			e.logger.Warn("chart failed", "id", res.result.ID, "err", res.result.err)
		} else {
			result.Succeeded++
		}
		sendProgress(prog, ProgressUpdate{Phase: ChartPlaylist, Step: completed, Total: len(jobs), Message: msg})
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch interrupted after %d of %d: %w", completed, len(jobs), err)
	}

	sendProgress(prog, ProgressUpdate{
		Phase:   Done,
		Step:    len(jobs),
		Total:   len(jobs),
		Message: fmt.Sprintf("%d charted, %d failed", result.Succeeded, result.Failed),
	})
	return result, nil
}

// worker charts jobs from the queue until it is drained or ctx is cancelled.
func (e *BatchEngine) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	table *stands.Table,
	queue <-chan indexedJob,
	results chan<- indexedResult,
) {
	defer wg.Done()

	for j := range queue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- indexedResult{index: j.index, result: chartJob(j.index, j.job, table)}
	}
}

func chartJob(index int, job Job, table *stands.Table) JobResult {
	id := job.ID
	if id == "" {
		id = fmt.Sprintf("#%d", index+1)
	}
	out := JobResult{ID: id}

	raw, err := jobMetrics(job)
	if err == nil {
		var res chart.Result
		if res, err = chart.Compute(raw, table); err == nil {
			out.Result = &res
			return out
		}
	}

	out.err = err
	out.Error = err.Error()
	return out
}

func jobMetrics(job Job) (chart.RawMetrics, error) {
	switch {
	case job.err != nil:
		return chart.RawMetrics{}, job.err
	case job.Metrics != nil && len(job.Tracks) > 0:
		return chart.RawMetrics{}, fmt.Errorf("%w: job has both metrics and tracks", shared.ErrInvalidInput)
	case job.Metrics != nil:
		return chart.DecodeRawMetrics(job.Metrics)
	case len(job.Tracks) > 0:
		if job.Potential == nil {
			return chart.RawMetrics{}, &chart.ValidationError{Fields: []string{chart.KeyPotential}}
		}
		return chart.Aggregate(job.Tracks, *job.Potential)
	default:
		return chart.RawMetrics{}, fmt.Errorf("%w: job has neither metrics nor tracks", shared.ErrInvalidInput)
	}
}
