// Package cache provides caching utilities for chunkviz
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// LRU wraps a thread-safe LRU cache and tracks hit/miss statistics
type LRU[K comparable, V any] struct {
	cache *lru.Cache[K, V]

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRU creates a new LRU cache with the specified capacity
func NewLRU[K comparable, V any](capacity int) (*LRU[K, V], error) {
	c, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRU[K, V]{cache: c}, nil
}

// Get retrieves a value from the cache, returning (value, true) if found
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return v, false
	}
	c.hits.Add(1)
	return v, true
}

// Put adds or updates a value in the cache
func (c *LRU[K, V]) Put(key K, value V) {
	c.cache.Add(key, value)
}

// Len returns the current number of items in the cache
func (c *LRU[K, V]) Len() int {
	return c.cache.Len()
}

// Stats returns cache hit/miss statistics
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRate returns the cache hit rate as a percentage
func (c *LRU[K, V]) HitRate() float64 {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Stats is a snapshot of result cache counters
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"` // Percent
	Entries int     `json:"entries"`
}

// ResultCache caches pipeline results by content hash of (text, params).
// Cached results are shared and must be treated as immutable.
type ResultCache struct {
	cache *LRU[string, *types.Result]
}

// NewResultCache creates a result cache holding up to capacity results
func NewResultCache(capacity int) (*ResultCache, error) {
	c, err := NewLRU[string, *types.Result](capacity)
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: c}, nil
}

// Get retrieves the result computed for text and params
func (c *ResultCache) Get(text string, p types.Params) (*types.Result, bool) {
	return c.cache.Get(Key(text, p))
}

// Put stores the result computed for text and params
func (c *ResultCache) Put(text string, p types.Params, result *types.Result) {
	c.cache.Put(Key(text, p), result)
}

// Stats returns cache statistics
func (c *ResultCache) Stats() Stats {
	hits, misses := c.cache.Stats()
	return Stats{
		Hits:    hits,
		Misses:  misses,
		HitRate: c.cache.HitRate(),
		Entries: c.cache.Len(),
	}
}

// Key hashes text and params into a cache key
func Key(text string, p types.Params) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%s|", p.ChunkSize, p.ChunkOverlap, p.Splitter, p.ContentType)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)[:16]) // first 16 bytes (128 bits)
}
