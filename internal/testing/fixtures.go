package testing

import (
	"time"

	"github.com/aristath/vantage/internal/modules/ledger"
)

// NewTradeFixtures returns a set of test trades for use in tests. The set
// covers open, closed and cancelled trades across two templates, with closed
// returns of +10%, +20% and -5% for the golden-cross template.
func NewTradeFixtures() []ledger.Trade {
	now := time.Now()
	lastWeek := now.AddDate(0, 0, -7)
	lastMonth := now.AddDate(0, -1, 0)

	return []ledger.Trade{
		ClosedTrade("trade-001", "AAPL", "golden-cross", 100.0, 110.0, lastMonth, lastWeek),
		ClosedTrade("trade-002", "MSFT", "golden-cross", 200.0, 240.0, lastMonth, lastWeek),
		ClosedTrade("trade-003", "AMZN", "golden-cross", 80.0, 76.0, lastWeek, now),
		ClosedTrade("trade-004", "META", "rsi-oversold", 300.0, 330.0, lastMonth, now),
		OpenTrade("trade-005", "NVDA", "golden-cross", 500.0, now),
		CancelledTrade("trade-006", "TSLA", "rsi-oversold", 250.0, lastWeek),
	}
}

// OpenTrade builds an open trade fixture
func OpenTrade(id, ticker, templateID string, entryPrice float64, entryDate time.Time) ledger.Trade {
	return ledger.Trade{
		ID:         id,
		Ticker:     ticker,
		TemplateID: templateID,
		EntryPrice: entryPrice,
		EntryDate:  entryDate,
		Quantity:   1,
		Status:     ledger.StatusOpen,
	}
}

// ClosedTrade builds a closed trade fixture with both exit fields set
func ClosedTrade(id, ticker, templateID string, entryPrice, exitPrice float64, entryDate, exitDate time.Time) ledger.Trade {
	return ledger.Trade{
		ID:         id,
		Ticker:     ticker,
		TemplateID: templateID,
		EntryPrice: entryPrice,
		EntryDate:  entryDate,
		ExitPrice:  &exitPrice,
		ExitDate:   &exitDate,
		Quantity:   1,
		Status:     ledger.StatusClosed,
	}
}

// CancelledTrade builds a cancelled trade fixture
func CancelledTrade(id, ticker, templateID string, entryPrice float64, entryDate time.Time) ledger.Trade {
	return ledger.Trade{
		ID:         id,
		Ticker:     ticker,
		TemplateID: templateID,
		EntryPrice: entryPrice,
		EntryDate:  entryDate,
		Quantity:   1,
		Status:     ledger.StatusCancelled,
	}
}

// TradesWithReturns builds closed trades for one template whose percentage
// returns match the given values exactly (entry price 100).
func TradesWithReturns(templateID string, returns []float64) []ledger.Trade {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	trades := make([]ledger.Trade, 0, len(returns))
	for i, ret := range returns {
		entry := base.AddDate(0, 0, i*7)
		exit := entry.AddDate(0, 0, 3)
		exitPrice := 100.0 + ret
		trades = append(trades, ledger.Trade{
			ID:         templateID + "-" + entry.Format("2006-01-02"),
			Ticker:     "TEST",
			TemplateID: templateID,
			EntryPrice: 100.0,
			EntryDate:  entry,
			ExitPrice:  &exitPrice,
			ExitDate:   &exit,
			Quantity:   1,
			Status:     ledger.StatusClosed,
		})
	}
	return trades
}

// FloatPtr returns a pointer to the given float64 value
func FloatPtr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to the given time value
func TimePtr(t time.Time) *time.Time {
	return &t
}
