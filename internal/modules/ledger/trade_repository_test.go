package ledger

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the real ledger schema, so
// these tests can never drift from what Migrate applies.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	schema, err := os.ReadFile(filepath.Join("..", "..", "database", "schemas", "ledger_schema.sql"))
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func newTestRepo(t *testing.T) (*TradeRepository, *sql.DB) {
	db := setupTestDB(t)
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewTradeRepository(db, log), db
}

func openTrade(ticker, templateID string) Trade {
	return Trade{
		Ticker:     ticker,
		TemplateID: templateID,
		EntryPrice: 100.0,
		EntryDate:  time.Now(),
		Status:     StatusOpen,
	}
}

func TestTradeRepository_CreateAndGet(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id, err := repo.Create(openTrade("aapl", "golden-cross"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	trade, err := repo.Get(id)
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, "AAPL", trade.Ticker, "tickers are normalized to upper case")
	assert.Equal(t, "golden-cross", trade.TemplateID)
	assert.Equal(t, StatusOpen, trade.Status)
	assert.Equal(t, 1.0, trade.Quantity, "quantity defaults to 1")
	assert.Nil(t, trade.ExitPrice)
	assert.Nil(t, trade.ExitDate)
}

func TestTradeRepository_GetMissing(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	trade, err := repo.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, trade)
}

func TestTradeRepository_CreateValidation(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	tests := []struct {
		name  string
		trade Trade
	}{
		{"missing ticker", Trade{TemplateID: "golden-cross", EntryPrice: 100, EntryDate: time.Now()}},
		{"missing template", Trade{Ticker: "AAPL", EntryPrice: 100, EntryDate: time.Now()}},
		{"zero entry price", Trade{Ticker: "AAPL", TemplateID: "golden-cross", EntryDate: time.Now()}},
		{"negative entry price", Trade{Ticker: "AAPL", TemplateID: "golden-cross", EntryPrice: -5, EntryDate: time.Now()}},
		{"missing entry date", Trade{Ticker: "AAPL", TemplateID: "golden-cross", EntryPrice: 100}},
		{"negative quantity", Trade{Ticker: "AAPL", TemplateID: "golden-cross", EntryPrice: 100, EntryDate: time.Now(), Quantity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(tt.trade)
			assert.Error(t, err)
		})
	}
}

func TestTradeRepository_CreateForcesOpen(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	exitPrice := 120.0
	exitDate := time.Now()
	trade := openTrade("AAPL", "golden-cross")
	trade.Status = StatusClosed
	trade.ExitPrice = &exitPrice
	trade.ExitDate = &exitDate

	id, err := repo.Create(trade)
	require.NoError(t, err)

	stored, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, stored.Status, "exits are only recorded via Close")
	assert.Nil(t, stored.ExitPrice)
}

func TestTradeRepository_CreateBatch(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	ids, err := repo.CreateBatch([]Trade{
		openTrade("AAPL", "golden-cross"),
		openTrade("MSFT", "rsi-oversold"),
		openTrade("AMZN", "golden-cross"),
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	open, err := repo.CountByStatus(StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, 3, open)

	trades, err := repo.AllTrades()
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, ids[0], trades[0].ID, "import preserves batch order in the ledger")
	assert.Equal(t, ids[2], trades[2].ID)
}

func TestTradeRepository_CreateBatchRollsBackOnInvalidTrade(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	bad := openTrade("TSLA", "gap-fill")
	bad.EntryPrice = 0

	ids, err := repo.CreateBatch([]Trade{
		openTrade("AAPL", "golden-cross"),
		bad,
	})
	require.Error(t, err)
	assert.Nil(t, ids)

	// The valid trade before the invalid one must not survive the rollback.
	trades, err := repo.AllTrades()
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestTradeRepository_CloseLifecycle(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)

	exitDate := time.Now()
	err = repo.Close(id, 110.0, exitDate)
	require.NoError(t, err)

	trade, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, trade.Status)
	require.NotNil(t, trade.ExitPrice)
	assert.Equal(t, 110.0, *trade.ExitPrice)
	require.NotNil(t, trade.ExitDate)

	ret, ok := trade.ReturnPct()
	require.True(t, ok)
	assert.InDelta(t, 10.0, ret, 1e-9)

	// Closing is irreversible: a second close must fail.
	err = repo.Close(id, 120.0, exitDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open")

	// The recorded exit is untouched by the failed attempt.
	trade, err = repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 110.0, *trade.ExitPrice)
}

func TestTradeRepository_CloseValidation(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)

	err = repo.Close(id, 0, time.Now())
	assert.Error(t, err)

	err = repo.Close(id, -10, time.Now())
	assert.Error(t, err)

	err = repo.Close(id, 110, time.Time{})
	assert.Error(t, err)

	err = repo.Close("no-such-id", 110, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTradeRepository_Cancel(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)

	err = repo.Cancel(id)
	require.NoError(t, err)

	trade, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, trade.Status)

	// Cancelled trades cannot be closed or re-cancelled.
	err = repo.Close(id, 110, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open")

	err = repo.Cancel(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open")

	err = repo.Cancel("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTradeRepository_UpdateNotesAfterClose(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)
	require.NoError(t, repo.Close(id, 110, time.Now()))

	err = repo.UpdateNotes(id, "took profit at resistance")
	require.NoError(t, err)

	trade, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "took profit at resistance", trade.Notes)

	err = repo.UpdateNotes("no-such-id", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTradeRepository_AllTradesLedgerOrder(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id1, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)
	id2, err := repo.Create(openTrade("MSFT", "rsi-oversold"))
	require.NoError(t, err)
	id3, err := repo.Create(openTrade("AMZN", "golden-cross"))
	require.NoError(t, err)

	// Closing a trade must not change its ledger position.
	require.NoError(t, repo.Close(id2, 220, time.Now()))

	trades, err := repo.AllTrades()
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, id1, trades[0].ID)
	assert.Equal(t, id2, trades[1].ID)
	assert.Equal(t, id3, trades[2].ID)
}

func TestTradeRepository_ByTemplate(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	_, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)
	_, err = repo.Create(openTrade("MSFT", "rsi-oversold"))
	require.NoError(t, err)
	_, err = repo.Create(openTrade("AMZN", "golden-cross"))
	require.NoError(t, err)

	trades, err := repo.ByTemplate("golden-cross")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "AAPL", trades[0].Ticker)
	assert.Equal(t, "AMZN", trades[1].Ticker)

	trades, err = repo.ByTemplate("unknown")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestTradeRepository_CountByStatus(t *testing.T) {
	repo, db := newTestRepo(t)
	defer db.Close()

	id1, err := repo.Create(openTrade("AAPL", "golden-cross"))
	require.NoError(t, err)
	_, err = repo.Create(openTrade("MSFT", "golden-cross"))
	require.NoError(t, err)
	id3, err := repo.Create(openTrade("AMZN", "golden-cross"))
	require.NoError(t, err)

	require.NoError(t, repo.Close(id1, 110, time.Now()))
	require.NoError(t, repo.Cancel(id3))

	open, err := repo.CountByStatus(StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	closed, err := repo.CountByStatus(StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	cancelled, err := repo.CountByStatus(StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
}
