package analytics

import (
	"sort"

	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/templates"
)

// classify maps a pair's correlation and diversification benefit to the
// qualitative recommendation label.
func classify(correlation, diversificationBenefit float64) Recommendation {
	switch {
	case correlation < -0.3 && diversificationBenefit > 20:
		return RecommendationExcellent
	case correlation < 0.2 && diversificationBenefit > 10:
		return RecommendationGood
	case correlation > 0.7:
		return RecommendationAvoid
	default:
		return RecommendationNeutral
	}
}

// PairwiseCorrelations evaluates every unordered template pair: correlation on
// aligned series, diversification benefit, pooled win rate and pooled average
// return across both templates' closed trades. The result is stable-sorted
// descending by diversification benefit, so ties keep catalog enumeration
// order.
func PairwiseCorrelations(trades []ledger.Trade, catalog []templates.Template) []TemplateCorrelation {
	ids := make([]string, len(catalog))
	for i, tpl := range catalog {
		ids[i] = tpl.ID
	}
	stats := collectClosedStats(trades, ids)

	pairs := make([]TemplateCorrelation, 0, len(catalog)*(len(catalog)-1)/2)

	for i := 0; i < len(catalog); i++ {
		for j := i + 1; j < len(catalog); j++ {
			sa := stats[catalog[i].ID]
			sb := stats[catalog[j].ID]

			alignedA, alignedB := AlignSeries(sa.Returns, sb.Returns)

			pooledTotal := len(sa.Returns) + len(sb.Returns)
			combinedAvg := 0.0
			if pooledTotal > 0 {
				combinedAvg = (sa.SumReturn + sb.SumReturn) / float64(pooledTotal)
			}

			correlation := Pearson(alignedA, alignedB)
			benefit := DiversificationBenefit(sa.Returns, sb.Returns)

			pairs = append(pairs, TemplateCorrelation{
				TemplateA:              catalog[i].Name,
				TemplateB:              catalog[j].Name,
				Correlation:            correlation,
				DiversificationBenefit: benefit,
				CombinedWinRate:        pooledWinRate(sa.Wins+sb.Wins, pooledTotal),
				CombinedAvgReturn:      combinedAvg,
				Recommendation:         classify(correlation, benefit),
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].DiversificationBenefit > pairs[b].DiversificationBenefit
	})

	return pairs
}
