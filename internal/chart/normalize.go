// Package chart normalizes playlist metrics into the Stand stat space and finds the closest Stand.
package chart

import "github.com/atharvtrasi/playlist-stand-chart/internal/stands"

// FeatureVector is a normalized playlist profile, ordered [power, speed, precision, development, stamina, range].
type FeatureVector = stands.Vector

const (
	scaleFloor = 100.0 / 6
	scaleSpan  = 500.0 / 6
)

// Domain is the physical range of one raw metric.
type Domain struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (d Domain) Span() float64 {
	return d.Max - d.Min
}

// Scale maps v affinely so that Min lands on 100/6 and Max on 100. Values outside the domain extrapolate.
func (d Domain) Scale(v float64) float64 {
	return scaleSpan*((v-d.Min)/d.Span()) + scaleFloor
}

// Domains of each feature, indexed by vector slot.
var Domains = [stands.NumFeatures]Domain{
	stands.Power:       {Min: 0, Max: 3},             // danceability
	stands.Speed:       {Min: 40, Max: 250},          // BPM
	stands.Precision:   {Min: 0, Max: 1},             // relaxed probability
	stands.Development: {Min: 1, Max: 6},             // potential
	stands.Stamina:     {Min: 4, Max: 1_440_000_000}, // total duration, ms
	stands.Range:       {Min: 1, Max: 8},             // distinct genres
}

// Normalize scales each metric into the shared feature space. No rounding or clamping is applied.
func Normalize(m Metrics) FeatureVector {
	var v FeatureVector
	v[stands.Power] = Domains[stands.Power].Scale(m.AverageDanceability)
	v[stands.Speed] = Domains[stands.Speed].Scale(m.AverageBPM)
	v[stands.Precision] = Domains[stands.Precision].Scale(m.AverageRelaxedProbability)
	v[stands.Development] = Domains[stands.Development].Scale(float64(m.Potential))
	v[stands.Stamina] = Domains[stands.Stamina].Scale(m.SpotifyTotalDurationMs)
	v[stands.Range] = Domains[stands.Range].Scale(m.UniqueGenreCount)
	return v
}
