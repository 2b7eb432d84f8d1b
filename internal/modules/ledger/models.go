// Package ledger provides the trade ledger: the append-only record of executed
// positions that the analytics engine reads as immutable snapshots.
package ledger

import (
	"fmt"
	"strings"
	"time"
)

// TradeStatus represents the lifecycle state of a trade
type TradeStatus string

const (
	StatusOpen      TradeStatus = "open"
	StatusClosed    TradeStatus = "closed"
	StatusCancelled TradeStatus = "cancelled"
)

// Trade represents one executed position.
//
// Lifecycle: created as "open"; transitions to "closed" exactly once when an exit
// is recorded (exit price and date set atomically), or to "cancelled". After
// close/cancel only notes may be edited.
type Trade struct {
	ID           string      `json:"id" msgpack:"id"`
	Ticker       string      `json:"ticker" msgpack:"ticker"`
	TemplateID   string      `json:"template_id" msgpack:"template_id"`
	TemplateName string      `json:"template_name" msgpack:"template_name"`
	EntryPrice   float64     `json:"entry_price" msgpack:"entry_price"`
	EntryDate    time.Time   `json:"entry_date" msgpack:"entry_date"`
	ExitPrice    *float64    `json:"exit_price,omitempty" msgpack:"exit_price"`
	ExitDate     *time.Time  `json:"exit_date,omitempty" msgpack:"exit_date"`
	Quantity     float64     `json:"quantity" msgpack:"quantity"`
	Notes        string      `json:"notes,omitempty" msgpack:"notes"`
	Status       TradeStatus `json:"status" msgpack:"status"`
}

// Validate checks trade invariants before persistence
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.Ticker) == "" {
		return fmt.Errorf("ticker is required")
	}
	if strings.TrimSpace(t.TemplateID) == "" {
		return fmt.Errorf("template id is required")
	}
	if t.EntryPrice <= 0 {
		return fmt.Errorf("entry price must be positive, got %v", t.EntryPrice)
	}
	if t.EntryDate.IsZero() {
		return fmt.Errorf("entry date is required")
	}
	if t.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %v", t.Quantity)
	}

	switch t.Status {
	case StatusOpen:
		if t.ExitPrice != nil || t.ExitDate != nil {
			return fmt.Errorf("open trade must not have exit fields")
		}
	case StatusClosed:
		if t.ExitPrice == nil || t.ExitDate == nil {
			return fmt.Errorf("closed trade must have exit price and exit date")
		}
		if *t.ExitPrice <= 0 {
			return fmt.Errorf("exit price must be positive, got %v", *t.ExitPrice)
		}
	case StatusCancelled:
		// No exit fields expected; cancelled trades are excluded from analytics.
	default:
		return fmt.Errorf("unknown trade status %q", t.Status)
	}

	return nil
}

// IsClosed reports whether the trade has been closed with an exit recorded
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// ReturnPct computes the percentage return of a closed trade.
// Returns false when the trade is not closed or the exit price is missing
// (a record violating the closed-trade invariant is skipped, never a fault).
func (t *Trade) ReturnPct() (float64, bool) {
	if t.Status != StatusClosed || t.ExitPrice == nil {
		return 0, false
	}
	return (*t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100.0, true
}
