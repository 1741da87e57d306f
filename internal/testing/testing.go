// Package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// Fill returns a vector with every feature set to v.
func Fill(v float64) stands.Vector {
	var out stands.Vector
	for i := range out {
		out[i] = v
	}
	return out
}

// MustTable builds a reference table from rows or fails the test.
func MustTable(t *testing.T, rows ...stands.Row) *stands.Table {
	t.Helper()
	table, err := stands.FromRows(rows)
	if err != nil {
		t.Fatalf("Failed to build table: %v", err)
	}
	return table
}

// ReferenceTable is a small three-row table: Low, Middle, and High. Middle is the closest row to the
// example playlist used throughout the tests.
func ReferenceTable(t *testing.T) *stands.Table {
	t.Helper()
	return MustTable(t,
		stands.Row{Name: "Low", Features: Fill(20)},
		stands.Row{Name: "Middle", Features: stands.Vector{50, 40, 50, 50, 20, 50}},
		stands.Row{Name: "High", Features: Fill(90)},
	)
}

// WriteFile writes content to path or fails the test.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
