package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/vantage/internal/modules/ledger"
)

// SnapshotKey creates a deterministic hash of a ledger snapshot for cache
// keys. The snapshot is msgpack-encoded (fixed field order) and hashed, so an
// unchanged ledger always maps to the same key.
func SnapshotKey(trades []ledger.Trade) (string, error) {
	data, err := msgpack.Marshal(trades)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot for hashing: %w", err)
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:16]), nil
}

// SnapshotCache is an explicit memoization layer for analytics results, keyed
// by kind plus snapshot content hash. The analytics functions are pure over
// their snapshot; the cache only avoids recomputation, never changes results.
// The ledger owner must call Invalidate after mutating the ledger.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewSnapshotCache creates an empty snapshot cache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string][]byte),
	}
}

// Get retrieves a cached result for the given kind and snapshot key
func (c *SnapshotCache) Get(kind, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[kind+":"+key]
	return data, ok
}

// Set stores a computed result for the given kind and snapshot key
func (c *SnapshotCache) Set(kind, key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[kind+":"+key] = data
}

// Invalidate drops all cached results. Called on ledger mutation.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
}

// Len returns the number of cached entries
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
