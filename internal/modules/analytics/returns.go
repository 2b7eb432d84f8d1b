package analytics

import (
	"github.com/aristath/vantage/internal/modules/ledger"
)

// ReturnSeries derives the ordered percentage-return series for a template
// from a ledger snapshot. Only closed trades contribute; closed trades missing
// an exit price (invariant violations) are skipped, never a fault. An empty
// ledger yields an empty series.
func ReturnSeries(trades []ledger.Trade, templateID string) []float64 {
	returns := make([]float64, 0)
	for _, t := range trades {
		if t.TemplateID != templateID {
			continue
		}
		if r, ok := t.ReturnPct(); ok {
			returns = append(returns, r)
		}
	}
	return returns
}

// closedTradeStats summarizes a template's closed trades for pooling
type closedTradeStats struct {
	Returns   []float64
	Wins      int
	SumReturn float64
}

// collectClosedStats builds per-template closed-trade summaries over the
// snapshot for the given template ids, in one pass.
func collectClosedStats(trades []ledger.Trade, templateIDs []string) map[string]*closedTradeStats {
	stats := make(map[string]*closedTradeStats, len(templateIDs))
	for _, id := range templateIDs {
		stats[id] = &closedTradeStats{Returns: make([]float64, 0)}
	}

	for _, t := range trades {
		s, ok := stats[t.TemplateID]
		if !ok {
			continue
		}
		r, ok := t.ReturnPct()
		if !ok {
			continue
		}
		s.Returns = append(s.Returns, r)
		s.SumReturn += r
		if r > 0 {
			s.Wins++
		}
	}

	return stats
}

// pooledWinRate computes the win fraction (x100) over pooled closed trades
func pooledWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100.0
}
