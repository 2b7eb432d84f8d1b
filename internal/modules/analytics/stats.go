package analytics

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a series. Empty series yield 0.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return stat.Mean(series, nil)
}

// StdDev calculates the population standard deviation (divide by N, not N-1)
// of a series, for consistency with the diversification calculation.
// Empty series yield 0.
func StdDev(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return stat.PopStdDev(series, nil)
}

// Pearson calculates the Pearson correlation coefficient of two equal-length
// series. Returns 0 for empty, unequal-length, or zero-variance inputs; a
// constant series is a defined degenerate case, not an error.
func Pearson(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	// gonum returns NaN when either series is constant; the convention here
	// is 0 so degenerate series never poison the matrix.
	if stat.PopVariance(a, nil) == 0 || stat.PopVariance(b, nil) == 0 {
		return 0
	}
	return stat.Correlation(a, b, nil)
}

// AlignSeries truncates both series to the shorter length, taking elements
// from the start of each in ledger order.
//
// Alignment is positional, not chronological: two templates with different
// trade frequencies get unrelated periods compared against each other. This
// reproduces the dashboard's documented behavior; the tests encode it
// explicitly pending product clarification.
func AlignSeries(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[:n], b[:n]
}

// clamp restricts a value to a given range.
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
