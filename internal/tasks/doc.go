// Package tasks runs chart computations for many playlists at once with progress reporting.
//
// # Batch Charting
//
// [BatchEngine.Run] fans a list of [Job] values out to a fixed worker pool. Each job carries either a
// playlist summary or per-track analyses that are aggregated first. All workers share one reference
// table obtained through a [stands.Handle]; matching is pure, so no further coordination is needed.
//
// Results come back in input order. A job that fails validation is reported in its [JobResult] and does
// not stop the batch; only a table load failure or cancellation aborts the run.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct carries phase, step counters, and a message. Updates use select with
// default so a slow or absent reader never blocks the workers.
package tasks
