package chart

import (
	"errors"
	"strings"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// ErrNoTracks is returned when a playlist summary is requested for zero tracks.
var ErrNoTracks = errors.New("chart: no tracks to aggregate")

// unknownGenre is the label analysis services use when no genre could be determined.
const unknownGenre = "unknown"

// TrackAnalysis is the per-track audio analysis a collaborator extracted. Nil fields were not available.
type TrackAnalysis struct {
	BPM                *float64 `json:"bpm"`
	Danceability       *float64 `json:"danceability"`
	RelaxedProbability *float64 `json:"relaxedProbability"`
	Genre              string   `json:"genre"`
	DurationMs         int64    `json:"durationMs"`
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

// value returns the mean rounded to two decimals, or nil when nothing was added.
func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	avg := shared.Round(m.sum/float64(m.n), 2)
	return &avg
}

// Aggregate summarizes per-track analyses into playlist metrics. Averages only count tracks that
// carry the value and are rounded to two decimals. Genres are counted case-insensitively, ignoring
// empty and "Unknown" labels. A metric no track could supply stays nil so validation reports it.
func Aggregate(tracks []TrackAnalysis, potential int) (RawMetrics, error) {
	if len(tracks) == 0 {
		return RawMetrics{}, ErrNoTracks
	}

	var bpm, dance, relaxed mean
	var duration float64
	genres := make(map[string]struct{})

	for _, t := range tracks {
		bpm.add(t.BPM)
		dance.add(t.Danceability)
		relaxed.add(t.RelaxedProbability)
		duration += float64(t.DurationMs)

		g := strings.ToLower(strings.TrimSpace(t.Genre))
		if g != "" && g != unknownGenre {
			genres[g] = struct{}{}
		}
	}

	raw := RawMetrics{
		AverageBPM:                bpm.value(),
		AverageDanceability:       dance.value(),
		AverageRelaxedProbability: relaxed.value(),
		SpotifyTotalDurationMs:    &duration,
		Potential:                 &potential,
	}
	if len(genres) > 0 {
		count := float64(len(genres))
		raw.UniqueGenreCount = &count
	}
	return raw, nil
}
