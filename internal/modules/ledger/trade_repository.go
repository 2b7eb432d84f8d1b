package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/vantage/internal/database"
)

// TradeRepository handles trade database operations
type TradeRepository struct {
	ledgerDB *sql.DB // ledger.db - trades table
	log      zerolog.Logger
}

// tradesColumns is the list of columns for the trades table
// Used to avoid SELECT * which can break when schema changes
// Column order must match scanTrade() and scanTradeFromRows()
const tradesColumns = `id, ticker, template_id, template_name, entry_price, entry_date, exit_price, exit_date, quantity, notes, status`

// ErrNotFound is returned when no trade exists for the given id
var ErrNotFound = errors.New("trade not found")

// NewTradeRepository creates a new trade repository
func NewTradeRepository(ledgerDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "trade").Logger(),
	}
}

// Create inserts a new open trade record and returns its assigned id.
// The trade is always created as open; exits are recorded via Close.
func (r *TradeRepository) Create(trade Trade) (string, error) {
	trade.Status = StatusOpen
	trade.ExitPrice = nil
	trade.ExitDate = nil

	if trade.Quantity == 0 {
		trade.Quantity = 1
	}

	if err := trade.Validate(); err != nil {
		return "", fmt.Errorf("failed to create trade: %w", err)
	}

	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	now := time.Now().Unix()

	query := `
		INSERT INTO trades
		(id, ticker, template_id, template_name, entry_price, entry_date,
		 exit_price, exit_date, quantity, notes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?)
	`

	_, err := r.ledgerDB.Exec(query,
		trade.ID,
		strings.ToUpper(strings.TrimSpace(trade.Ticker)),
		trade.TemplateID,
		trade.TemplateName,
		trade.EntryPrice,
		trade.EntryDate.Unix(),
		trade.Quantity,
		nullString(trade.Notes),
		string(StatusOpen),
		now,
		now,
	)

	if err != nil {
		return "", fmt.Errorf("failed to create trade: %w", err)
	}

	r.log.Info().
		Str("id", trade.ID).
		Str("ticker", trade.Ticker).
		Str("template", trade.TemplateID).
		Float64("entry_price", trade.EntryPrice).
		Msg("Trade created")

	return trade.ID, nil
}

// CreateBatch inserts a set of trades as open atomically, for importing
// historical positions from an existing dashboard. Either every trade lands in
// the ledger or none does; a single invalid record rolls the whole import back.
func (r *TradeRepository) CreateBatch(trades []Trade) ([]string, error) {
	ids := make([]string, 0, len(trades))

	query := `
		INSERT INTO trades
		(id, ticker, template_id, template_name, entry_price, entry_date,
		 exit_price, exit_date, quantity, notes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?)
	`

	err := database.WithTransaction(r.ledgerDB, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		for _, trade := range trades {
			trade.Status = StatusOpen
			trade.ExitPrice = nil
			trade.ExitDate = nil
			if trade.Quantity == 0 {
				trade.Quantity = 1
			}
			if err := trade.Validate(); err != nil {
				return fmt.Errorf("invalid trade for %q: %w", trade.Ticker, err)
			}
			if trade.ID == "" {
				trade.ID = uuid.New().String()
			}

			_, err := tx.Exec(query,
				trade.ID,
				strings.ToUpper(strings.TrimSpace(trade.Ticker)),
				trade.TemplateID,
				trade.TemplateName,
				trade.EntryPrice,
				trade.EntryDate.Unix(),
				trade.Quantity,
				nullString(trade.Notes),
				string(StatusOpen),
				now,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trade for %q: %w", trade.Ticker, err)
			}
			ids = append(ids, trade.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import trades: %w", err)
	}

	r.log.Info().Int("count", len(ids)).Msg("Trades imported")

	return ids, nil
}

// Close records the exit of an open trade. The transition is atomic and
// irreversible: exit price and exit date are set together, and only an open
// trade can be closed.
func (r *TradeRepository) Close(id string, exitPrice float64, exitDate time.Time) error {
	if exitPrice <= 0 {
		return fmt.Errorf("failed to close trade: exit price must be positive, got %v", exitPrice)
	}
	if exitDate.IsZero() {
		return fmt.Errorf("failed to close trade: exit date is required")
	}

	now := time.Now().Unix()

	query := `
		UPDATE trades
		SET status = ?, exit_price = ?, exit_date = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.ledgerDB.Exec(query, string(StatusClosed), exitPrice, exitDate.Unix(), now, id, string(StatusOpen))
	if err != nil {
		return fmt.Errorf("failed to close trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close trade: %w", err)
	}
	if affected == 0 {
		// Either the trade does not exist or it already left the open state.
		exists, err := r.exists(id)
		if err != nil {
			return fmt.Errorf("failed to close trade: %w", err)
		}
		if !exists {
			return fmt.Errorf("failed to close trade %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to close trade %s: trade is not open", id)
	}

	r.log.Info().
		Str("id", id).
		Float64("exit_price", exitPrice).
		Msg("Trade closed")

	return nil
}

// Cancel transitions an open trade to cancelled. Cancelled trades are excluded
// from all return and statistics computation.
func (r *TradeRepository) Cancel(id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE trades
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.ledgerDB.Exec(query, string(StatusCancelled), now, id, string(StatusOpen))
	if err != nil {
		return fmt.Errorf("failed to cancel trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to cancel trade: %w", err)
	}
	if affected == 0 {
		exists, err := r.exists(id)
		if err != nil {
			return fmt.Errorf("failed to cancel trade: %w", err)
		}
		if !exists {
			return fmt.Errorf("failed to cancel trade %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to cancel trade %s: trade is not open", id)
	}

	r.log.Info().Str("id", id).Msg("Trade cancelled")

	return nil
}

// UpdateNotes edits the notes of a trade. Note edits are the only mutation
// allowed after a trade is closed or cancelled.
func (r *TradeRepository) UpdateNotes(id string, notes string) error {
	now := time.Now().Unix()

	result, err := r.ledgerDB.Exec(
		`UPDATE trades SET notes = ?, updated_at = ? WHERE id = ?`,
		nullString(notes), now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade notes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update trade notes: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update notes for trade %s: %w", id, ErrNotFound)
	}

	return nil
}

// Get retrieves a trade by id. Returns nil when no trade matches.
func (r *TradeRepository) Get(id string) (*Trade, error) {
	query := "SELECT " + tradesColumns + " FROM trades WHERE id = ?"

	row := r.ledgerDB.QueryRow(query, id)
	trade, err := r.scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return &trade, nil
}

// AllTrades retrieves every trade in ledger (insertion) order.
// This is the snapshot the analytics engine computes over.
func (r *TradeRepository) AllTrades() ([]Trade, error) {
	query := "SELECT " + tradesColumns + " FROM trades ORDER BY seq ASC"

	rows, err := r.ledgerDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		trade, err := r.scanTradeFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// ByTemplate retrieves all trades for a template in ledger order
func (r *TradeRepository) ByTemplate(templateID string) ([]Trade, error) {
	query := "SELECT " + tradesColumns + " FROM trades WHERE template_id = ? ORDER BY seq ASC"

	rows, err := r.ledgerDB.Query(query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades by template: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		trade, err := r.scanTradeFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// CountByStatus returns the number of trades in the given status
func (r *TradeRepository) CountByStatus(status TradeStatus) (int, error) {
	var count int
	err := r.ledgerDB.QueryRow(`SELECT COUNT(*) FROM trades WHERE status = ?`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// Helper methods

func (r *TradeRepository) exists(id string) (bool, error) {
	var one int
	err := r.ledgerDB.QueryRow(`SELECT 1 FROM trades WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *TradeRepository) scanTrade(row *sql.Row) (Trade, error) {
	var trade Trade
	var entryDate int64
	var exitPrice sql.NullFloat64
	var exitDate sql.NullInt64
	var notes sql.NullString
	var status string

	err := row.Scan(
		&trade.ID,
		&trade.Ticker,
		&trade.TemplateID,
		&trade.TemplateName,
		&trade.EntryPrice,
		&entryDate,
		&exitPrice,
		&exitDate,
		&trade.Quantity,
		&notes,
		&status,
	)
	if err != nil {
		return trade, err
	}

	applyScannedFields(&trade, entryDate, exitPrice, exitDate, notes, status)
	return trade, nil
}

func (r *TradeRepository) scanTradeFromRows(rows *sql.Rows) (Trade, error) {
	var trade Trade
	var entryDate int64
	var exitPrice sql.NullFloat64
	var exitDate sql.NullInt64
	var notes sql.NullString
	var status string

	err := rows.Scan(
		&trade.ID,
		&trade.Ticker,
		&trade.TemplateID,
		&trade.TemplateName,
		&trade.EntryPrice,
		&entryDate,
		&exitPrice,
		&exitDate,
		&trade.Quantity,
		&notes,
		&status,
	)
	if err != nil {
		return trade, err
	}

	applyScannedFields(&trade, entryDate, exitPrice, exitDate, notes, status)
	return trade, nil
}

func applyScannedFields(trade *Trade, entryDate int64, exitPrice sql.NullFloat64, exitDate sql.NullInt64, notes sql.NullString, status string) {
	trade.EntryDate = time.Unix(entryDate, 0).UTC()
	trade.Status = TradeStatus(status)

	if exitPrice.Valid {
		trade.ExitPrice = &exitPrice.Float64
	}
	if exitDate.Valid {
		t := time.Unix(exitDate.Int64, 0).UTC()
		trade.ExitDate = &t
	}
	if notes.Valid {
		trade.Notes = notes.String
	}

	trade.Ticker = strings.ToUpper(strings.TrimSpace(trade.Ticker))
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
