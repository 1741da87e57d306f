package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// JSON keys of the six playlist metrics, in validation order.
const (
	KeyBPM          = "averageBPM"
	KeyDanceability = "averageDanceability"
	KeyGenreCount   = "uniqueGenreCount"
	KeyDurationMs   = "spotifyTotalDurationMs"
	KeyRelaxed      = "averageRelaxedProbability"
	KeyPotential    = "potential"
)

var metricKeys = []string{KeyBPM, KeyDanceability, KeyGenreCount, KeyDurationMs, KeyRelaxed, KeyPotential}

// RawMetrics is the playlist summary as received from a collaborator. A nil field is absent.
type RawMetrics struct {
	AverageBPM                *float64 `json:"averageBPM"`
	AverageDanceability       *float64 `json:"averageDanceability"`
	UniqueGenreCount          *float64 `json:"uniqueGenreCount"`
	SpotifyTotalDurationMs    *float64 `json:"spotifyTotalDurationMs"`
	AverageRelaxedProbability *float64 `json:"averageRelaxedProbability"`
	Potential                 *int     `json:"potential"`
}

// Metrics is a validated [RawMetrics] with every field present.
type Metrics struct {
	AverageBPM                float64 `json:"averageBPM"`
	AverageDanceability       float64 `json:"averageDanceability"`
	UniqueGenreCount          float64 `json:"uniqueGenreCount"`
	SpotifyTotalDurationMs    float64 `json:"spotifyTotalDurationMs"`
	AverageRelaxedProbability float64 `json:"averageRelaxedProbability"`
	Potential                 int     `json:"potential"`
}

// Raw converts m back into its boundary form, e.g. to feed a collaborator or a test.
func (m Metrics) Raw() RawMetrics {
	p := m.Potential
	return RawMetrics{
		AverageBPM:                ptr(m.AverageBPM),
		AverageDanceability:       ptr(m.AverageDanceability),
		UniqueGenreCount:          ptr(m.UniqueGenreCount),
		SpotifyTotalDurationMs:    ptr(m.SpotifyTotalDurationMs),
		AverageRelaxedProbability: ptr(m.AverageRelaxedProbability),
		Potential:                 &p,
	}
}

func ptr(f float64) *float64 { return &f }

// ValidationError lists the metrics that were missing, null, or not numbers.
type ValidationError struct {
	Fields  []string // missing or null keys
	Invalid []string // present but not a number
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Fields, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "chart: invalid metrics: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

// Validate checks that all six metrics are present. It reports every missing field at once.
func (r RawMetrics) Validate() (Metrics, error) {
	var missing []string
	check := func(key string, present bool) {
		if !present {
			missing = append(missing, key)
		}
	}
	check(KeyBPM, r.AverageBPM != nil)
	check(KeyDanceability, r.AverageDanceability != nil)
	check(KeyGenreCount, r.UniqueGenreCount != nil)
	check(KeyDurationMs, r.SpotifyTotalDurationMs != nil)
	check(KeyRelaxed, r.AverageRelaxedProbability != nil)
	check(KeyPotential, r.Potential != nil)

	if len(missing) > 0 {
		return Metrics{}, &ValidationError{Fields: missing}
	}

	return Metrics{
		AverageBPM:                *r.AverageBPM,
		AverageDanceability:       *r.AverageDanceability,
		UniqueGenreCount:          *r.UniqueGenreCount,
		SpotifyTotalDurationMs:    *r.SpotifyTotalDurationMs,
		AverageRelaxedProbability: *r.AverageRelaxedProbability,
		Potential:                 *r.Potential,
	}, nil
}

// DecodeRawMetrics reads the six metrics out of a decoded JSON object. Absent keys and nulls are
// left nil; values that are not finite numbers (or, for potential, not integers that fit an int) are
// reported as invalid. Unknown keys are ignored.
func DecodeRawMetrics(m map[string]any) (RawMetrics, error) {
	var raw RawMetrics
	var invalid []string

	for _, key := range metricKeys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}

		f, ok := toFloat(v)
		if !ok {
			invalid = append(invalid, key)
			continue
		}

		switch key {
		case KeyBPM:
			raw.AverageBPM = &f
		case KeyDanceability:
			raw.AverageDanceability = &f
		case KeyGenreCount:
			raw.UniqueGenreCount = &f
		case KeyDurationMs:
			raw.SpotifyTotalDurationMs = &f
		case KeyRelaxed:
			raw.AverageRelaxedProbability = &f
		case KeyPotential:
			if f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
				invalid = append(invalid, key)
				continue
			}
			p := int(f)
			raw.Potential = &p
		}
	}

	if len(invalid) > 0 {
		return raw, &ValidationError{Invalid: invalid}
	}
	return raw, nil
}

// ParseMetrics decodes a JSON object and validates it in one step.
func ParseMetrics(data []byte) (Metrics, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	raw, err := DecodeRawMetrics(m)
	if err != nil {
		return Metrics{}, err
	}
	return raw.Validate()
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
