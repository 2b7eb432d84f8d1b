// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the analytics engine.
const (
	// DefaultPortfolioSize is the portfolio size used when a caller asks for
	// recommendations without specifying one.
	DefaultPortfolioSize = 3

	// DefaultMaxCombinations bounds N*C(N,k) for the portfolio combination
	// search. Above this the search fails fast instead of growing silently.
	DefaultMaxCombinations = 250_000
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the ledger database (always absolute)
	LogLevel        string
	PortfolioSize   int // Default portfolio size for recommendations
	MaxCombinations int // Ceiling on N*C(N,k) in the combination search
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check VANTAGE_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("VANTAGE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PortfolioSize:   getEnvAsInt("PORTFOLIO_SIZE", DefaultPortfolioSize),
		MaxCombinations: getEnvAsInt("MAX_COMBINATIONS", DefaultMaxCombinations),
		DevMode:         getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.PortfolioSize < 1 {
		return fmt.Errorf("portfolio size must be at least 1, got %d", c.PortfolioSize)
	}
	if c.MaxCombinations < 1 {
		return fmt.Errorf("max combinations must be at least 1, got %d", c.MaxCombinations)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
