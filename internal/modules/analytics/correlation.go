package analytics

import (
	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/templates"
)

// buildCorrelationGrid computes the N x N pairwise correlation grid over the
// catalog's return series. The diagonal is fixed to 1; each i<j pair is
// computed once on positionally aligned series and mirrored.
func buildCorrelationGrid(series [][]float64) [][]float64 {
	n := len(series)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := AlignSeries(series[i], series[j])
			c := Pearson(a, b)
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}

	return matrix
}

// BuildCorrelationMatrix builds the full correlation matrix across the
// catalog, plus the name -> description map for display layers.
func BuildCorrelationMatrix(trades []ledger.Trade, catalog []templates.Template) *CorrelationMatrix {
	names := make([]string, len(catalog))
	series := make([][]float64, len(catalog))
	descriptions := make(map[string]string, len(catalog))

	for i, tpl := range catalog {
		names[i] = tpl.Name
		series[i] = ReturnSeries(trades, tpl.ID)
		descriptions[tpl.Name] = tpl.Description
	}

	return &CorrelationMatrix{
		Templates:    names,
		Matrix:       buildCorrelationGrid(series),
		Descriptions: descriptions,
	}
}
