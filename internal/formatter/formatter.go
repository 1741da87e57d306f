// Package formatter renders chart results and the reference table as JSON, plain text, Markdown,
// CSV, or a styled terminal stat chart.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatChart    Format = "chart"
)

// Formats lists the supported formats, e.g. for flag help.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatMarkdown, FormatChart}
}

// ParseFormat resolves a case-insensitive format name. The empty string selects [FormatText].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Runner is a nearby Stand listed after the match.
type Runner struct {
	Stand    string  `json:"stand"`
	Distance float64 `json:"distance"`
}

// Report is a match plus the Stands ranked behind it.
type Report struct {
	chart.Result
	RunnersUp []Runner `json:"runnersUp,omitempty"`
}

// NewReport builds a report from a ranking whose first entry is the match.
func NewReport(ranked []chart.Result) Report {
	if len(ranked) == 0 {
		return Report{}
	}
	r := Report{Result: ranked[0]}
	for _, res := range ranked[1:] {
		r.RunnersUp = append(r.RunnersUp, Runner{Stand: res.Stand.Name, Distance: res.Distance})
	}
	return r
}

// Render dispatches to the renderer for f.
func Render(f Format, r Report) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ToJSON(r)
	case FormatMarkdown:
		return ToMarkdown(r)
	case FormatChart:
		return []byte(RenderChart(r) + "\n"), nil
	case FormatText, "":
		return ToText(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ToJSON encodes the report with two-space indentation.
func ToJSON(r Report) ([]byte, error) {
	data, err := shared.MarshalJSON(r, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// ToText renders the report as an aligned plain text table.
func ToText(r Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Stand: %s\n", r.Stand.Name))
	buf.WriteString(fmt.Sprintf("Distance: %.2f\n\n", r.Distance))

	buf.WriteString(fmt.Sprintf("%-12s %9s %9s\n", "Stat", "Playlist", "Stand"))
	for _, f := range stands.Features() {
		buf.WriteString(fmt.Sprintf("%-12s %9.2f %9.2f\n", f, r.Playlist.At(f), r.Stand.Features.At(f)))
	}

	if len(r.RunnersUp) > 0 {
		buf.WriteString("\nRunners-up:\n")
		for i, ru := range r.RunnersUp {
			buf.WriteString(fmt.Sprintf("%d. %s (%.2f)\n", i+2, ru.Stand, ru.Distance))
		}
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders the report as a Markdown document with a stat table.
func ToMarkdown(r Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Stand.Name))
	buf.WriteString(fmt.Sprintf("**Distance**: %.2f\n\n", r.Distance))

	buf.WriteString("| Stat | Playlist | Stand | Grade |\n")
	buf.WriteString("| --- | ---: | ---: | :---: |\n")
	for _, f := range stands.Features() {
		stand := r.Stand.Features.At(f)
		buf.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %s |\n", f.Column(), r.Playlist.At(f), stand, stands.Grade(stand)))
	}

	if len(r.RunnersUp) > 0 {
		buf.WriteString("\n## Runners-up\n\n")
		for i, ru := range r.RunnersUp {
			buf.WriteString(fmt.Sprintf("%d. %s (%.2f)\n", i+2, ru.Stand, ru.Distance))
		}
	}

	return buf.Bytes(), nil
}

// StandsToCSV writes the table with the canonical header Stand,PWR,SPD,PRC,DEV,STM,RNG.
func StandsToCSV(table *stands.Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := append([]string{stands.LabelColumn}, stands.Columns[:]...)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for row := range table.Rows() {
		record := []string{row.Name}
		for _, v := range row.Features {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// StandsToText lists the table as aligned plain text, one Stand per line with grade letters.
func StandsToText(table *stands.Table) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-32s", stands.LabelColumn))
	for _, col := range stands.Columns {
		buf.WriteString(fmt.Sprintf(" %4s", col))
	}
	buf.WriteString("\n")

	for row := range table.Rows() {
		buf.WriteString(fmt.Sprintf("%-32s", row.Name))
		for _, v := range row.Features {
			buf.WriteString(fmt.Sprintf(" %4s", stands.Grade(v)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}
