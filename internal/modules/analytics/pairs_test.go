package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/vantage/internal/modules/ledger"
	testingpkg "github.com/aristath/vantage/internal/testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		correlation float64
		benefit     float64
		want        Recommendation
	}{
		{"negative correlation with strong benefit", -0.5, 25, RecommendationExcellent},
		{"negative correlation with modest benefit", -0.5, 15, RecommendationGood},
		{"low correlation with modest benefit", 0.1, 12, RecommendationGood},
		{"low correlation without benefit", 0.1, 5, RecommendationNeutral},
		{"high correlation", 0.8, 0, RecommendationAvoid},
		{"high correlation outranks benefit", 0.75, 30, RecommendationAvoid},
		{"hedged but no dispersion reduction", -0.9, 0, RecommendationNeutral},
		{"correlation threshold is exclusive", 0.2, 15, RecommendationNeutral},
		{"avoid threshold is exclusive", 0.7, 0, RecommendationNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.correlation, tt.benefit))
		})
	}
}

func TestPairwiseCorrelations_AllPairs(t *testing.T) {
	catalog := testCatalog()

	var trades []ledger.Trade
	trades = append(trades, testingpkg.TradesWithReturns("alpha", []float64{10, -5})...)
	trades = append(trades, testingpkg.TradesWithReturns("beta", []float64{20})...)

	pairs := PairwiseCorrelations(trades, catalog)

	// 3 templates -> 3 unordered pairs, including those with no trades.
	require.Len(t, pairs, 3)

	// Every benefit is zero here, so the stable sort keeps enumeration order.
	assert.Equal(t, "Alpha", pairs[0].TemplateA)
	assert.Equal(t, "Beta", pairs[0].TemplateB)
	assert.Equal(t, "Alpha", pairs[1].TemplateA)
	assert.Equal(t, "Gamma", pairs[1].TemplateB)
	assert.Equal(t, "Beta", pairs[2].TemplateA)
	assert.Equal(t, "Gamma", pairs[2].TemplateB)

	// Pooled figures for the alpha/beta pair: 2 wins out of 3 closed trades.
	ab := pairs[0]
	assert.InDelta(t, 66.6667, ab.CombinedWinRate, 1e-3)
	assert.InDelta(t, 8.3333, ab.CombinedAvgReturn, 1e-3)

	// Pairs touching the empty template pool only the other side's trades.
	ag := pairs[1]
	assert.InDelta(t, 50.0, ag.CombinedWinRate, 1e-9)
	assert.InDelta(t, 2.5, ag.CombinedAvgReturn, 1e-9)
	assert.Equal(t, 0.0, ag.Correlation)
	assert.Equal(t, 0.0, ag.DiversificationBenefit)
}

func TestPairwiseCorrelations_SortedByBenefit(t *testing.T) {
	catalog := testCatalog()

	var trades []ledger.Trade
	trades = append(trades, testingpkg.TradesWithReturns("alpha", []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1})...)
	trades = append(trades, testingpkg.TradesWithReturns("beta", []float64{-10, 10})...)

	pairs := PairwiseCorrelations(trades, catalog)
	require.Len(t, pairs, 3)

	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].DiversificationBenefit, pairs[i].DiversificationBenefit,
			"pairs must be sorted descending by diversification benefit")
	}

	// The alpha/beta pair is the only one with a real benefit and ranks first:
	// anti-aligned on the overlapping window, with pooled dispersion well
	// below the average of the two.
	top := pairs[0]
	assert.Equal(t, "Alpha", top.TemplateA)
	assert.Equal(t, "Beta", top.TemplateB)
	assert.InDelta(t, -1.0, top.Correlation, 1e-9)
	assert.InDelta(t, 23.94, top.DiversificationBenefit, 0.01)
	assert.Equal(t, RecommendationExcellent, top.Recommendation)
}

func TestPairwiseCorrelations_EmptyLedger(t *testing.T) {
	pairs := PairwiseCorrelations(nil, testCatalog())

	require.Len(t, pairs, 3)
	for _, p := range pairs {
		assert.Equal(t, 0.0, p.Correlation)
		assert.Equal(t, 0.0, p.DiversificationBenefit)
		assert.Equal(t, 0.0, p.CombinedWinRate)
		assert.Equal(t, RecommendationNeutral, p.Recommendation)
	}
}
