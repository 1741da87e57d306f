package stands

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

//go:embed data/stands.csv
var bundled []byte

// GradeStep is the distance between two adjacent grade levels.
const GradeStep = 100.0 / 6

// grades lists the symbolic tokens in ascending order; level i scores i*GradeStep.
var grades = []string{"None", "E", "D", "C", "B", "A", "Infi"}

// columnAliases maps legacy headers onto canonical ones.
var columnAliases = map[string]string{
	"PER": "STM",
}

// DataFormatError reports a malformed reference dataset.
type DataFormatError struct {
	Line   int // 1-based CSV line, 0 when not tied to a line
	Column string
	Value  string
	Reason string
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("stands: malformed dataset")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	return b.String()
}

func (e *DataFormatError) Unwrap() error {
	return shared.ErrInvalidData
}

// GradeScore converts a symbolic grade token into its numeric score.
func GradeScore(token string) (float64, bool) {
	for i, g := range grades {
		if g == token {
			return float64(i) * GradeStep, true
		}
	}
	return 0, false
}

// Grade returns the token whose level is nearest to score, clamped to the None..Infi range.
func Grade(score float64) string {
	level := int(math.Round(score / GradeStep))
	return grades[max(0, min(level, len(grades)-1))]
}

// Load parses the dataset bundled with the binary.
func Load() (*Table, error) {
	return Parse(bytes.NewReader(bundled))
}

// LoadFile parses a dataset from disk, e.g. a replacement for the bundled one.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stands: open dataset: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a CSV dataset whose first column is the label and whose remaining columns are the six
// features in any order. Headers are matched by name after alias renaming; cells are either grade
// tokens or already-scaled numbers.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataFormatError{Reason: "missing header"}
	}
	if err != nil {
		return nil, fmt.Errorf("stands: read header: %w", err)
	}

	slots, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stands: read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRecord(record, slots, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &Table{rows: rows}, nil
}

// mapHeader returns, for each CSV column after the label, the vector slot it feeds.
func mapHeader(header []string) ([]Feature, error) {
	if len(header) == 0 || strings.TrimSpace(header[0]) == "" {
		return nil, &DataFormatError{Line: 1, Reason: "missing label column"}
	}

	slots := make([]Feature, 0, len(header)-1)
	seen := make(map[Feature]bool, NumFeatures)
	for _, h := range header[1:] {
		name := strings.ToUpper(strings.TrimSpace(h))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}

		f, ok := featureByColumn(name)
		if !ok {
			return nil, &DataFormatError{Line: 1, Column: h, Reason: "unexpected column"}
		}
		if seen[f] {
			return nil, &DataFormatError{Line: 1, Column: name, Reason: "duplicate column"}
		}
		seen[f] = true
		slots = append(slots, f)
	}

	for _, f := range Features() {
		if !seen[f] {
			return nil, &DataFormatError{Line: 1, Column: f.Column(), Reason: "missing feature column"}
		}
	}
	return slots, nil
}

func parseRecord(record []string, slots []Feature, line int) (Row, error) {
	if len(record) != len(slots)+1 {
		return Row{}, &DataFormatError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(slots)+1, len(record)),
		}
	}

	name := strings.TrimSpace(record[0])
	if name == "" {
		return Row{}, &DataFormatError{Line: line, Column: LabelColumn, Reason: "empty label"}
	}

	row := Row{Name: name}
	for i, f := range slots {
		cell := strings.TrimSpace(record[i+1])
		v, err := parseCell(cell)
		if err != nil {
			return Row{}, &DataFormatError{Line: line, Column: f.Column(), Value: cell, Reason: err.Error()}
		}
		row.Features[f] = v
	}
	return row, nil
}

func parseCell(cell string) (float64, error) {
	if cell == "" {
		return 0, errors.New("missing value")
	}
	if score, ok := GradeScore(cell); ok {
		return score, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("unrecognized token")
	}
	return v, nil
}

func featureByColumn(name string) (Feature, bool) {
	for i, col := range Columns {
		if col == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// FromRows builds a table from rows whose features are already numeric, e.g. rows read back from
// the catalog store or synthetic rows in tests. The slice is copied.
func FromRows(rows []Row) (*Table, error) {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			return nil, &DataFormatError{Line: i + 1, Column: LabelColumn, Reason: "empty label"}
		}
		for j, v := range r.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &DataFormatError{Line: i + 1, Column: Columns[j], Reason: "non-finite value"}
			}
		}
		out[i] = r
	}
	return &Table{rows: out}, nil
}
