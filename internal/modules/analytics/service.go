package analytics

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/vantage/internal/modules/ledger"
	"github.com/aristath/vantage/internal/modules/templates"
)

// TradeSource supplies the ledger snapshot the engine computes over
type TradeSource interface {
	AllTrades() ([]ledger.Trade, error)
}

// TemplateSource supplies the static strategy catalog
type TemplateSource interface {
	All() []templates.Template
}

// Config holds analytics engine settings
type Config struct {
	// DefaultPortfolioSize is used when PortfolioRecommendations is called
	// with a non-positive size.
	DefaultPortfolioSize int

	// MaxCombinations bounds N*C(N,k) in the portfolio search.
	MaxCombinations int
}

// Service exposes the correlation and portfolio analytics over a trade ledger
// and template catalog. Every method takes a fresh immutable snapshot, so
// concurrent calls are independent and results are deterministic for an
// unchanged ledger.
type Service struct {
	trades  TradeSource
	catalog TemplateSource
	cfg     Config
	cache   *SnapshotCache
	log     zerolog.Logger
}

// NewService creates a new analytics service
func NewService(trades TradeSource, catalog TemplateSource, cfg Config, log zerolog.Logger) *Service {
	if cfg.DefaultPortfolioSize <= 0 {
		cfg.DefaultPortfolioSize = 3
	}
	if cfg.MaxCombinations <= 0 {
		cfg.MaxCombinations = 250_000
	}
	return &Service{
		trades:  trades,
		catalog: catalog,
		cfg:     cfg,
		log:     log.With().Str("component", "analytics").Logger(),
	}
}

// SetCache sets the snapshot memoization cache. This is optional - without it
// every call computes fresh. The cache owner must invalidate on ledger
// mutation.
func (s *Service) SetCache(cache *SnapshotCache) {
	s.cache = cache
}

// ExtractReturns returns the ordered percentage-return series of a template's
// closed trades.
func (s *Service) ExtractReturns(templateID string) ([]float64, error) {
	snapshot, err := s.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	return ReturnSeries(snapshot, templateID), nil
}

// BuildCorrelationMatrix builds the full pairwise correlation matrix across
// the template catalog.
func (s *Service) BuildCorrelationMatrix() (*CorrelationMatrix, error) {
	snapshot, err := s.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	var cached CorrelationMatrix
	key, hit := s.fromCache("correlation_matrix", snapshot, &cached)
	if hit {
		return &cached, nil
	}

	matrix := BuildCorrelationMatrix(snapshot, s.catalog.All())

	s.log.Debug().
		Int("num_templates", len(matrix.Templates)).
		Int("num_trades", len(snapshot)).
		Msg("Built correlation matrix")

	s.toCache("correlation_matrix", key, matrix)
	return matrix, nil
}

// PairwiseCorrelations evaluates every unordered template pair, sorted
// descending by diversification benefit.
func (s *Service) PairwiseCorrelations() ([]TemplateCorrelation, error) {
	snapshot, err := s.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	var cached []TemplateCorrelation
	key, hit := s.fromCache("pairwise", snapshot, &cached)
	if hit {
		return cached, nil
	}

	pairs := PairwiseCorrelations(snapshot, s.catalog.All())

	s.toCache("pairwise", key, pairs)
	return pairs, nil
}

// PortfolioRecommendations ranks all template subsets of the given size.
// A non-positive size falls back to the configured default.
func (s *Service) PortfolioRecommendations(size int) ([]PortfolioRecommendation, error) {
	if size <= 0 {
		size = s.cfg.DefaultPortfolioSize
	}

	snapshot, err := s.trades.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	kind := fmt.Sprintf("portfolio_%d", size)
	var cached []PortfolioRecommendation
	key, hit := s.fromCache(kind, snapshot, &cached)
	if hit {
		return cached, nil
	}

	recommendations, err := PortfolioRecommendations(snapshot, s.catalog.All(), size, s.cfg.MaxCombinations)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("size", size).
		Int("num_recommendations", len(recommendations)).
		Msg("Ranked portfolio combinations")

	s.toCache(kind, key, recommendations)
	return recommendations, nil
}

// fromCache looks up a cached result for the snapshot. It returns the
// snapshot key (empty when caching is unavailable) and whether dest was
// populated from cache.
func (s *Service) fromCache(kind string, snapshot []ledger.Trade, dest interface{}) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	key, err := SnapshotKey(snapshot)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to hash ledger snapshot, skipping cache")
		return "", false
	}

	data, ok := s.cache.Get(kind, key)
	if !ok {
		return key, false
	}
	if err := msgpack.Unmarshal(data, dest); err != nil {
		s.log.Warn().Str("kind", kind).Err(err).Msg("Failed to decode cached result, recalculating")
		return key, false
	}

	s.log.Debug().Str("kind", kind).Str("key", key).Msg("Using cached analytics result")
	return key, true
}

// toCache stores a computed result under the snapshot key (no-op without a
// cache or key).
func (s *Service) toCache(kind, key string, value interface{}) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		s.log.Warn().Str("kind", kind).Err(err).Msg("Failed to encode analytics result for cache")
		return
	}
	s.cache.Set(kind, key, data)
}
