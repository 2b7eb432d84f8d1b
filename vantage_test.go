package vantage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/vantage/internal/config"
	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/performance"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	app, err := NewWithConfig(&config.Config{
		DataDir:         t.TempDir(),
		LogLevel:        "error",
		PortfolioSize:   config.DefaultPortfolioSize,
		MaxCombinations: config.DefaultMaxCombinations,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.Close())
	})
	return app
}

func recordClosedTrade(t *testing.T, app *App, ticker, templateID string, entryPrice, exitPrice float64) {
	t.Helper()

	id, err := app.RecordTrade(ledger.Trade{
		Ticker:     ticker,
		TemplateID: templateID,
		EntryPrice: entryPrice,
		EntryDate:  time.Now().AddDate(0, 0, -7),
	})
	require.NoError(t, err)
	require.NoError(t, app.CloseTrade(id, exitPrice, time.Now()))
}

func TestApp_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	recordClosedTrade(t, app, "AAPL", "golden-cross", 100, 110)
	recordClosedTrade(t, app, "MSFT", "golden-cross", 200, 240)
	recordClosedTrade(t, app, "AMZN", "golden-cross", 80, 76)
	recordClosedTrade(t, app, "META", "rsi-oversold", 300, 330)

	returns, err := app.Analytics.ExtractReturns("golden-cross")
	require.NoError(t, err)
	require.Len(t, returns, 3)
	assert.InDelta(t, 10.0, returns[0], 1e-9)
	assert.InDelta(t, 20.0, returns[1], 1e-9)
	assert.InDelta(t, -5.0, returns[2], 1e-9)

	matrix, err := app.Analytics.BuildCorrelationMatrix()
	require.NoError(t, err)
	assert.Len(t, matrix.Templates, len(app.Templates.All()))

	perf, err := app.Performance.TemplatePerformance("golden-cross")
	require.NoError(t, err)
	assert.Equal(t, 3, perf.TotalTrades)
	assert.InDelta(t, 66.6667, perf.WinRate, 1e-3)
	assert.InDelta(t, 15.0, perf.AvgGain, 1e-9)
	assert.InDelta(t, 5.0, perf.AvgLoss, 1e-9)
	assert.InDelta(t, 6.0, perf.ProfitFactor.Value, 1e-9)
	assert.InDelta(t, 8.3333, perf.TotalReturn, 1e-3)

	overall, err := app.Performance.Overall()
	require.NoError(t, err)
	assert.Equal(t, 4, overall.TotalTrades)

	breakdown, err := app.Performance.PeriodReports(performance.GranularityAll)
	require.NoError(t, err)
	require.Len(t, breakdown.Reports, 1)
	assert.Equal(t, 4, breakdown.Reports[0].ClosedTrades)
}

func TestApp_MutationsInvalidateCache(t *testing.T) {
	app := newTestApp(t)

	recordClosedTrade(t, app, "AAPL", "golden-cross", 100, 110)
	recordClosedTrade(t, app, "MSFT", "golden-cross", 100, 120)

	m1, err := app.Analytics.BuildCorrelationMatrix()
	require.NoError(t, err)

	// Two co-moving trades for a second template give the pair a real
	// correlation where the first snapshot had the zero convention.
	recordClosedTrade(t, app, "META", "rsi-oversold", 100, 90)
	recordClosedTrade(t, app, "NFLX", "rsi-oversold", 100, 110)

	m2, err := app.Analytics.BuildCorrelationMatrix()
	require.NoError(t, err)

	assert.Equal(t, m1.Templates, m2.Templates)
	assert.NotEqual(t, m1.Matrix, m2.Matrix)
}

func TestApp_DevModeRunsIntegrityCheck(t *testing.T) {
	app, err := NewWithConfig(&config.Config{
		DataDir:         t.TempDir(),
		LogLevel:        "error",
		PortfolioSize:   config.DefaultPortfolioSize,
		MaxCombinations: config.DefaultMaxCombinations,
		DevMode:         true,
	})
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestApp_ImportTrades(t *testing.T) {
	app := newTestApp(t)

	entry := time.Now().AddDate(0, 0, -30)
	ids, err := app.ImportTrades([]ledger.Trade{
		{Ticker: "AAPL", TemplateID: "golden-cross", EntryPrice: 100, EntryDate: entry},
		{Ticker: "MSFT", TemplateID: "rsi-oversold", EntryPrice: 200, EntryDate: entry},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	open, err := app.Trades.CountByStatus(ledger.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, 2, open)

	// A bad record anywhere voids the whole import.
	bad := ledger.Trade{Ticker: "TSLA", TemplateID: "gap-fill", EntryDate: entry}
	_, err = app.ImportTrades([]ledger.Trade{
		{Ticker: "AMZN", TemplateID: "golden-cross", EntryPrice: 80, EntryDate: entry},
		bad,
	})
	require.Error(t, err)

	open, err = app.Trades.CountByStatus(ledger.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, 2, open, "failed imports leave the ledger untouched")
}

func TestApp_TradeLifecycleThroughHelpers(t *testing.T) {
	app := newTestApp(t)

	id, err := app.RecordTrade(ledger.Trade{
		Ticker:     "TSLA",
		TemplateID: "gap-fill",
		EntryPrice: 250,
		EntryDate:  time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, app.CancelTrade(id))
	require.Error(t, app.CloseTrade(id, 260, time.Now()), "cancelled trades cannot be closed")

	require.NoError(t, app.UpdateTradeNotes(id, "setup invalidated at the open"))
	trade, err := app.Trades.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "setup invalidated at the open", trade.Notes)

	// Cancelled trades never reach the analytics series.
	returns, err := app.Analytics.ExtractReturns("gap-fill")
	require.NoError(t, err)
	assert.Empty(t, returns)
}
