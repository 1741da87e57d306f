// Package stands holds the reference table of Stands that playlists are matched against.
package stands

import (
	"encoding/json"
	"iter"
	"strings"
)

// NumFeatures is the dimensionality of the shared feature space.
const NumFeatures = 6

// Feature indexes one slot of a [Vector].
type Feature int

const (
	Power Feature = iota
	Speed
	Precision
	Development
	Stamina
	Range
)

// LabelColumn is the canonical header of the name column.
const LabelColumn = "Stand"

// Columns are the canonical feature headers in vector order.
var Columns = [NumFeatures]string{"PWR", "SPD", "PRC", "DEV", "STM", "RNG"}

var featureNames = [NumFeatures]string{"power", "speed", "precision", "development", "stamina", "range"}

// String returns the lower-case feature name, e.g. "power".
func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return "unknown"
	}
	return featureNames[f]
}

// Column returns the canonical dataset header for f, e.g. "PWR".
func (f Feature) Column() string {
	if f < 0 || int(f) >= NumFeatures {
		return ""
	}
	return Columns[f]
}

// Features returns all features in vector order.
func Features() []Feature {
	return []Feature{Power, Speed, Precision, Development, Stamina, Range}
}

// Vector is an ordered point in the feature space: [power, speed, precision, development, stamina, range].
type Vector [NumFeatures]float64

// At returns the value stored for f.
func (v Vector) At(f Feature) float64 {
	return v[f]
}

// Row is one labeled reference point.
type Row struct {
	Name     string
	Features Vector
}

// Map flattens the row into {"Stand": name, "PWR": …, …, "RNG": …}.
func (r Row) Map() map[string]any {
	m := make(map[string]any, NumFeatures+1)
	m[LabelColumn] = r.Name
	for i, col := range Columns {
		m[col] = r.Features[i]
	}
	return m
}

// MarshalJSON encodes the row as its flat [Row.Map] form.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Table is an ordered, read-only collection of reference rows.
//
// A Table is never mutated after construction and is safe for concurrent readers.
type Table struct {
	rows []Row
}

// Rows yields every row in table order. The sequence can be ranged over any number of times.
func (t *Table) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if t == nil {
			return
		}
		for _, r := range t.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Lookup finds a row by name, ignoring case and surrounding whitespace.
func (t *Table) Lookup(name string) (Row, bool) {
	name = strings.TrimSpace(name)
	for r := range t.Rows() {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Row{}, false
}
