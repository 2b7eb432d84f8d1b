// Package performance provides per-template and overall trade performance
// rollups, including period-bucketed reports.
package performance

import (
	"math"
	"strconv"
)

// ProfitFactor is the ratio of total gains to total losses across closed
// trades. The infinite case (gains with zero losses) is a tagged variant
// instead of a raw floating-point infinity, so serialization and formatting
// layers never see +Inf.
type ProfitFactor struct {
	Value    float64 `json:"value"`
	Infinite bool    `json:"infinite"`
}

// Float64 returns the profit factor as a float, using +Inf for the tagged
// infinite case. Intended for in-process comparisons only.
func (pf ProfitFactor) Float64() float64 {
	if pf.Infinite {
		return math.Inf(1)
	}
	return pf.Value
}

func (pf ProfitFactor) String() string {
	if pf.Infinite {
		return "inf"
	}
	return strconv.FormatFloat(pf.Value, 'f', 2, 64)
}

// TemplatePerformance is the rollup of one template's trades
type TemplatePerformance struct {
	TemplateID    string       `json:"template_id"`
	TemplateName  string       `json:"template_name"`
	TotalTrades   int          `json:"total_trades"`
	WinningTrades int          `json:"winning_trades"`
	LosingTrades  int          `json:"losing_trades"`
	OpenTrades    int          `json:"open_trades"`
	WinRate       float64      `json:"win_rate"`
	AvgGain       float64      `json:"avg_gain"`
	AvgLoss       float64      `json:"avg_loss"`
	ProfitFactor  ProfitFactor `json:"profit_factor"`
	TotalReturn   float64      `json:"total_return"`
	BestTrade     float64      `json:"best_trade"`
	WorstTrade    float64      `json:"worst_trade"`
}

// OverallPerformance aggregates across all templates
type OverallPerformance struct {
	TotalTrades   int     `json:"total_trades"`
	TotalWins     int     `json:"total_wins"`
	TotalLosses   int     `json:"total_losses"`
	WinRate       float64 `json:"win_rate"`
	AvgReturn     float64 `json:"avg_return"`
	BestStrategy  string  `json:"best_strategy"`
	WorstStrategy string  `json:"worst_strategy"`
}

// Granularity selects the calendar window for period reports
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
	GranularityAll     Granularity = "all"
)

// PeriodReport is the performance rollup of one calendar bucket
type PeriodReport struct {
	Period        string  `json:"period"`
	TotalTrades   int     `json:"total_trades"`
	ClosedTrades  int     `json:"closed_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgReturn     float64 `json:"avg_return"`
}

// PeriodBreakdown is the full period-bucketed report plus the best and worst
// buckets by average return (empty when no bucket has closed trades).
type PeriodBreakdown struct {
	Granularity Granularity    `json:"granularity"`
	Reports     []PeriodReport `json:"reports"`
	BestPeriod  string         `json:"best_period"`
	WorstPeriod string         `json:"worst_period"`
}
