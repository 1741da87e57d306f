package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// ErrEmptyTable is returned when matching against a table without rows.
var ErrEmptyTable = errors.New("chart: reference table is empty")

// EmptyTableError wraps [ErrEmptyTable] with the operation that hit it.
type EmptyTableError struct {
	Op string
}

func (e *EmptyTableError) Error() string {
	if e.Op == "" {
		return ErrEmptyTable.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, ErrEmptyTable)
}

func (e *EmptyTableError) Unwrap() error {
	return ErrEmptyTable
}

// Result is a playlist profile and the Stand closest to it.
type Result struct {
	Playlist FeatureVector `json:"playlist"`
	Stand    stands.Row    `json:"stand"`
	Distance float64       `json:"distance"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b FeatureVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match returns features unchanged together with the closest row of table. When several rows are
// equally close the earliest one in table order wins.
func Match(features FeatureVector, table *stands.Table) (FeatureVector, stands.Row, error) {
	best, bestDist, found := stands.Row{}, math.Inf(1), false
	for row := range table.Rows() {
		if d := Distance(features, row.Features); !found || d < bestDist {
			best, bestDist, found = row, d, true
		}
	}
	if !found {
		return features, stands.Row{}, &EmptyTableError{Op: "match"}
	}
	return features, best, nil
}

// ComputeMatch normalizes m and matches it against table. It has no side effects.
func ComputeMatch(m Metrics, table *stands.Table) (Result, error) {
	features, row, err := Match(Normalize(m), table)
	if err != nil {
		return Result{}, err
	}
	return Result{Playlist: features, Stand: row, Distance: Distance(features, row.Features)}, nil
}

// Compute validates raw and then runs [ComputeMatch]. Validation happens before any normalization.
func Compute(raw RawMetrics, table *stands.Table) (Result, error) {
	m, err := raw.Validate()
	if err != nil {
		return Result{}, err
	}
	return ComputeMatch(m, table)
}

// Rank returns the n closest rows, nearest first, keeping table order among equal distances.
// n <= 0 ranks the whole table.
func Rank(features FeatureVector, table *stands.Table, n int) ([]Result, error) {
	var ranked []Result
	for row := range table.Rows() {
		ranked = append(ranked, Result{Playlist: features, Stand: row, Distance: Distance(features, row.Features)})
	}
	if len(ranked) == 0 {
		return nil, &EmptyTableError{Op: "rank"}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
