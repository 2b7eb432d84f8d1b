package performance

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/templates"
)

// TradeSource supplies the ledger snapshot the reporter computes over
type TradeSource interface {
	AllTrades() ([]ledger.Trade, error)
}

// TemplateSource supplies the static strategy catalog
type TemplateSource interface {
	All() []templates.Template
}

// Reporter computes performance rollups over immutable ledger snapshots.
// Like the analytics service, every call is independent and deterministic
// for an unchanged ledger.
type Reporter struct {
	trades  TradeSource
	catalog TemplateSource
	log     zerolog.Logger
}

// NewReporter creates a new performance reporter
func NewReporter(trades TradeSource, catalog TemplateSource, log zerolog.Logger) *Reporter {
	return &Reporter{
		trades:  trades,
		catalog: catalog,
		log:     log.With().Str("component", "performance").Logger(),
	}
}

// TemplatePerformance computes the rollup for one template. A template with
// no closed trades yields zero-valued metrics, never an error.
func (r *Reporter) TemplatePerformance(templateID string) (*TemplatePerformance, error) {
	snapshot, err := r.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	name := templateID
	if tpl, ok := r.lookupTemplate(templateID); ok {
		name = tpl.Name
	}

	perf := computeTemplatePerformance(snapshot, templateID)
	perf.TemplateID = templateID
	perf.TemplateName = name

	return perf, nil
}

// Overall aggregates across all catalog templates the same way, and names the
// best and worst template by total return (among those with closed trades).
func (r *Reporter) Overall() (*OverallPerformance, error) {
	snapshot, err := r.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	overall := &OverallPerformance{}

	sumReturns := 0.0
	closedCount := 0

	bestReturn := 0.0
	worstReturn := 0.0

	for _, tpl := range r.catalog.All() {
		perf := computeTemplatePerformance(snapshot, tpl.ID)

		overall.TotalTrades += perf.TotalTrades
		overall.TotalWins += perf.WinningTrades
		overall.TotalLosses += perf.LosingTrades

		closed := perf.TotalTrades
		if closed == 0 {
			continue
		}
		sumReturns += perf.TotalReturn * float64(closed)
		closedCount += closed

		if overall.BestStrategy == "" || perf.TotalReturn > bestReturn {
			overall.BestStrategy = tpl.Name
			bestReturn = perf.TotalReturn
		}
		if overall.WorstStrategy == "" || perf.TotalReturn < worstReturn {
			overall.WorstStrategy = tpl.Name
			worstReturn = perf.TotalReturn
		}
	}

	if overall.TotalTrades > 0 {
		overall.WinRate = float64(overall.TotalWins) / float64(overall.TotalTrades) * 100.0
	}
	if closedCount > 0 {
		overall.AvgReturn = sumReturns / float64(closedCount)
	}

	return overall, nil
}

// PeriodReports partitions trades by entry date into the requested calendar
// windows, computes the same metrics per bucket, and identifies the best and
// worst bucket by average return.
func (r *Reporter) PeriodReports(granularity Granularity) (*PeriodBreakdown, error) {
	snapshot, err := r.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	type bucket struct {
		total   int
		closed  int
		wins    int
		losses  int
		sumRet  float64
	}
	buckets := make(map[string]*bucket)

	for _, t := range snapshot {
		if t.Status == ledger.StatusCancelled {
			continue
		}
		key := bucketKey(t.EntryDate, granularity)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.total++

		ret, ok := t.ReturnPct()
		if !ok {
			continue
		}
		b.closed++
		b.sumRet += ret
		if ret > 0 {
			b.wins++
		} else if ret < 0 {
			b.losses++
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	breakdown := &PeriodBreakdown{
		Granularity: granularity,
		Reports:     make([]PeriodReport, 0, len(keys)),
	}

	bestAvg := 0.0
	worstAvg := 0.0

	for _, key := range keys {
		b := buckets[key]
		report := PeriodReport{
			Period:        key,
			TotalTrades:   b.total,
			ClosedTrades:  b.closed,
			WinningTrades: b.wins,
			LosingTrades:  b.losses,
		}
		if b.closed > 0 {
			report.WinRate = float64(b.wins) / float64(b.closed) * 100.0
			report.AvgReturn = b.sumRet / float64(b.closed)

			if breakdown.BestPeriod == "" || report.AvgReturn > bestAvg {
				breakdown.BestPeriod = key
				bestAvg = report.AvgReturn
			}
			if breakdown.WorstPeriod == "" || report.AvgReturn < worstAvg {
				breakdown.WorstPeriod = key
				worstAvg = report.AvgReturn
			}
		}
		breakdown.Reports = append(breakdown.Reports, report)
	}

	r.log.Debug().
		Str("granularity", string(granularity)).
		Int("num_buckets", len(breakdown.Reports)).
		Msg("Built period reports")

	return breakdown, nil
}

// lookupTemplate finds a catalog entry by id
func (r *Reporter) lookupTemplate(id string) (templates.Template, bool) {
	for _, tpl := range r.catalog.All() {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return templates.Template{}, false
}

// computeTemplatePerformance computes the closed-trade rollup for one
// template over a snapshot. TotalTrades counts closed trades; open trades are
// reported separately and cancelled trades are excluded entirely.
func computeTemplatePerformance(snapshot []ledger.Trade, templateID string) *TemplatePerformance {
	perf := &TemplatePerformance{}

	var returns []float64
	for _, t := range snapshot {
		if t.TemplateID != templateID {
			continue
		}
		if t.Status == ledger.StatusOpen {
			perf.OpenTrades++
			continue
		}
		ret, ok := t.ReturnPct()
		if !ok {
			continue
		}
		returns = append(returns, ret)
	}

	perf.TotalTrades = len(returns)
	if len(returns) == 0 {
		return perf
	}

	totalGain := 0.0
	totalLoss := 0.0
	sumReturns := 0.0
	perf.BestTrade = returns[0]
	perf.WorstTrade = returns[0]

	for _, ret := range returns {
		sumReturns += ret
		if ret > 0 {
			perf.WinningTrades++
			totalGain += ret
		} else if ret < 0 {
			perf.LosingTrades++
			totalLoss += -ret
		}
		if ret > perf.BestTrade {
			perf.BestTrade = ret
		}
		if ret < perf.WorstTrade {
			perf.WorstTrade = ret
		}
	}

	perf.WinRate = float64(perf.WinningTrades) / float64(perf.TotalTrades) * 100.0
	perf.TotalReturn = sumReturns / float64(perf.TotalTrades)

	if perf.WinningTrades > 0 {
		perf.AvgGain = totalGain / float64(perf.WinningTrades)
	}
	if perf.LosingTrades > 0 {
		perf.AvgLoss = totalLoss / float64(perf.LosingTrades)
	}

	if totalLoss == 0 {
		if totalGain > 0 {
			perf.ProfitFactor = ProfitFactor{Infinite: true}
		}
		// No gains and no losses leaves the zero value.
	} else {
		perf.ProfitFactor = ProfitFactor{Value: totalGain / totalLoss}
	}

	return perf
}
