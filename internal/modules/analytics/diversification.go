package analytics

import "math"

// DiversificationBenefit measures how much pooling two return streams lowers
// aggregate dispersion relative to their individual average dispersion,
// as a percentage (never negative).
//
// The combined series is the concatenation of the two inputs, not a
// covariance-weighted combination: this is a heuristic, not a formal
// portfolio-variance reduction.
func DiversificationBenefit(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	volA := StdDev(a)
	volB := StdDev(b)

	combined := make([]float64, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	volCombined := StdDev(combined)

	avgVol := (volA + volB) / 2
	if avgVol == 0 {
		return 0
	}

	benefit := (avgVol - volCombined) / avgVol * 100.0
	return math.Max(0, benefit)
}
