// Package vantage wires the strategy analytics engine together: configuration,
// logging, the SQLite trade ledger, the template catalog, the correlation
// analytics service and the performance reporter.
//
// The package is consumed in-process by a host application (typically the
// dashboard); there is no server or CLI surface here.
package vantage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/vantage/internal/config"
	"github.com/aristath/vantage/internal/database"
	"github.com/aristath/vantage/internal/modules/analytics"
	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/performance"
	"github.com/aristath/vantage/internal/modules/templates"
	"github.com/aristath/vantage/pkg/logger"
)

// App is the assembled engine. Construct it with New, close it with Close.
type App struct {
	Config      *config.Config
	Log         zerolog.Logger
	Templates   *templates.Registry
	Trades      *ledger.TradeRepository
	Analytics   *analytics.Service
	Performance *performance.Reporter

	db    *database.DB
	cache *analytics.SnapshotCache
}

// New loads configuration from the environment, opens the ledger database and
// wires every component.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the engine with an explicit configuration
func NewWithConfig(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}

	// The ledger is the audit trail: verify it before serving analytics.
	// Dev mode runs the full integrity check; otherwise a ping suffices.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if cfg.DevMode {
		err = db.HealthCheck(ctx)
	} else {
		err = db.QuickCheck(ctx)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger database failed health check: %w", err)
	}

	registry := templates.NewRegistry()
	trades := ledger.NewTradeRepository(db.Conn(), log)

	cache := analytics.NewSnapshotCache()
	analyticsService := analytics.NewService(trades, registry, analytics.Config{
		DefaultPortfolioSize: cfg.PortfolioSize,
		MaxCombinations:      cfg.MaxCombinations,
	}, log)
	analyticsService.SetCache(cache)

	reporter := performance.NewReporter(trades, registry, log)

	log.Info().
		Str("ledger_db", db.Path()).
		Int("templates", len(registry.All())).
		Msg("Engine initialized")

	return &App{
		Config:      cfg,
		Log:         log,
		Templates:   registry,
		Trades:      trades,
		Analytics:   analyticsService,
		Performance: reporter,
		db:          db,
		cache:       cache,
	}, nil
}

// Close checkpoints the WAL and releases the ledger database connection.
// The ledger profile never auto-vacuums, so the shutdown checkpoint is what
// keeps the WAL file from growing across restarts.
func (a *App) Close() error {
	if err := a.db.WALCheckpoint("TRUNCATE"); err != nil {
		a.Log.Warn().Err(err).Msg("Failed to checkpoint ledger WAL on shutdown")
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close ledger database: %w", err)
	}
	return nil
}

// Ledger mutation helpers. These exist so the memoization cache is dropped on
// every write; callers mutating through a.Trades directly must call
// InvalidateCache themselves.

// RecordTrade appends a new open trade to the ledger
func (a *App) RecordTrade(trade ledger.Trade) (string, error) {
	id, err := a.Trades.Create(trade)
	if err != nil {
		return "", err
	}
	a.cache.Invalidate()
	return id, nil
}

// ImportTrades appends a batch of open trades atomically
func (a *App) ImportTrades(trades []ledger.Trade) ([]string, error) {
	ids, err := a.Trades.CreateBatch(trades)
	if err != nil {
		return nil, err
	}
	a.cache.Invalidate()
	return ids, nil
}

// CloseTrade records the exit of an open trade
func (a *App) CloseTrade(id string, exitPrice float64, exitDate time.Time) error {
	if err := a.Trades.Close(id, exitPrice, exitDate); err != nil {
		return err
	}
	a.cache.Invalidate()
	return nil
}

// CancelTrade cancels an open trade, excluding it from analytics
func (a *App) CancelTrade(id string) error {
	if err := a.Trades.Cancel(id); err != nil {
		return err
	}
	a.cache.Invalidate()
	return nil
}

// UpdateTradeNotes edits a trade's notes in any status
func (a *App) UpdateTradeNotes(id, notes string) error {
	if err := a.Trades.UpdateNotes(id, notes); err != nil {
		return err
	}
	a.cache.Invalidate()
	return nil
}

// InvalidateCache drops all memoized analytics results
func (a *App) InvalidateCache() {
	a.cache.Invalidate()
}
