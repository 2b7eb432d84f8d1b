package analytics

import (
	"fmt"
	"sort"

	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/templates"
)

// Weighting of the final portfolio ranking score.
const (
	diversificationWeight = 0.6
	winRateWeight         = 0.4
)

// Rationale templates keyed on average pairwise correlation.
const (
	rationaleHedged   = "Negatively correlated templates hedge each other during drawdowns"
	rationaleSolid    = "Low correlation between templates provides solid diversification"
	rationaleModerate = "Moderately correlated templates offer limited but real diversification"
	rationaleOverlap  = "Highly correlated templates overlap; expect concentrated risk"
)

func rationaleFor(avgCorrelation float64) string {
	switch {
	case avgCorrelation < 0:
		return rationaleHedged
	case avgCorrelation < 0.3:
		return rationaleSolid
	case avgCorrelation < 0.6:
		return rationaleModerate
	default:
		return rationaleOverlap
	}
}

// combinationGenerator enumerates k-subsets of {0..n-1} in lexicographic
// order using an explicit index array, avoiding recursion and per-subset
// allocation.
type combinationGenerator struct {
	n, k int
	idx  []int
	done bool
}

func newCombinationGenerator(n, k int) *combinationGenerator {
	g := &combinationGenerator{n: n, k: k}
	if k <= 0 || k > n {
		g.done = true
		return g
	}
	g.idx = make([]int, k)
	for i := range g.idx {
		g.idx[i] = i
	}
	return g
}

// next returns the current combination and advances the generator.
// The returned slice is reused; callers must copy what they keep.
func (g *combinationGenerator) next() ([]int, bool) {
	if g.done {
		return nil, false
	}
	current := g.idx

	// Advance: find the rightmost index that can still move right.
	i := g.k - 1
	for i >= 0 && g.idx[i] == g.n-g.k+i {
		i--
	}
	if i < 0 {
		g.done = true
	} else {
		g.idx[i]++
		for j := i + 1; j < g.k; j++ {
			g.idx[j] = g.idx[j-1] + 1
		}
	}

	return current, true
}

// binomial computes C(n, k), clamping at limit to avoid overflow.
func binomial(n, k, limit int64) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := int64(1); i <= k; i++ {
		result = result * (n - k + i) / i
		if result > limit {
			return limit + 1
		}
	}
	return result
}

// PortfolioRecommendations enumerates all template subsets of the given size
// and ranks them by a weighted blend of diversification score and pooled win
// rate. Subsets with no closed trades are skipped. Requesting a size larger
// than the catalog yields an empty result, not an error.
//
// maxCombinations bounds N*C(N,k): the enumeration is the dominant cost and is
// rejected up front instead of growing silently.
func PortfolioRecommendations(
	trades []ledger.Trade,
	catalog []templates.Template,
	size int,
	maxCombinations int,
) ([]PortfolioRecommendation, error) {
	n := len(catalog)
	if size <= 0 {
		return []PortfolioRecommendation{}, nil
	}
	if size > n {
		return []PortfolioRecommendation{}, nil
	}

	total := binomial(int64(n), int64(size), int64(maxCombinations))
	if int64(n)*total > int64(maxCombinations) {
		return nil, fmt.Errorf(
			"portfolio search over %d templates at size %d exceeds the combination ceiling (%d)",
			n, size, maxCombinations,
		)
	}

	ids := make([]string, n)
	for i, tpl := range catalog {
		ids[i] = tpl.ID
	}
	stats := collectClosedStats(trades, ids)

	// Precompute the pairwise correlation and benefit grids once per call.
	series := make([][]float64, n)
	for i, tpl := range catalog {
		series[i] = stats[tpl.ID].Returns
	}
	correlations := buildCorrelationGrid(series)
	benefits := make([][]float64, n)
	for i := range benefits {
		benefits[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			b := DiversificationBenefit(series[i], series[j])
			benefits[i][j] = b
			benefits[j][i] = b
		}
	}

	type scored struct {
		rec    PortfolioRecommendation
		weight float64
	}
	results := make([]scored, 0)

	gen := newCombinationGenerator(n, size)
	for {
		combo, ok := gen.next()
		if !ok {
			break
		}

		// Pool closed trades across the subset's templates.
		pooledCount := 0
		pooledWins := 0
		pooledSum := 0.0
		for _, i := range combo {
			s := stats[catalog[i].ID]
			pooledCount += len(s.Returns)
			pooledWins += s.Wins
			pooledSum += s.SumReturn
		}
		if pooledCount == 0 {
			continue
		}

		winRate := pooledWinRate(pooledWins, pooledCount)
		avgReturn := pooledSum / float64(pooledCount)

		// Average the precomputed pairwise figures over the subset.
		sumCorrelation := 0.0
		sumBenefit := 0.0
		pairCount := 0
		for a := 0; a < len(combo); a++ {
			for b := a + 1; b < len(combo); b++ {
				sumCorrelation += correlations[combo[a]][combo[b]]
				sumBenefit += benefits[combo[a]][combo[b]]
				pairCount++
			}
		}
		avgCorrelation := 0.0
		riskReduction := 0.0
		if pairCount > 0 {
			avgCorrelation = sumCorrelation / float64(pairCount)
			riskReduction = sumBenefit / float64(pairCount)
		}

		// Map average correlation [-1, 1] to a 0-100 score (-1 -> 100, +1 -> 0).
		score := clamp(100-(avgCorrelation+1)*50, 0, 100)

		names := make([]string, len(combo))
		for i, idx := range combo {
			names[i] = catalog[idx].Name
		}

		results = append(results, scored{
			rec: PortfolioRecommendation{
				Templates:            names,
				ExpectedWinRate:      winRate,
				ExpectedAvgReturn:    avgReturn,
				DiversificationScore: score,
				RiskReduction:        riskReduction,
				Rationale:            rationaleFor(avgCorrelation),
			},
			weight: diversificationWeight*score + winRateWeight*winRate,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].weight > results[b].weight
	})

	recommendations := make([]PortfolioRecommendation, len(results))
	for i, s := range results {
		recommendations[i] = s.rec
	}

	return recommendations, nil
}
