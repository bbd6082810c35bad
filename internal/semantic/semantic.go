// Package semantic defines the injected similarity capability consumed by
// the scoring engine: a content-addressed cache plus an optional similarity
// provider. The engine never talks to a network itself; providers live
// behind this interface with a bounded timeout, and every failure path
// degrades to "no similarity available", never to a pipeline abort.
package semantic

import (
	"context"
	"math"
	"sync"
	"time"
)

// Cache is a content-addressed similarity cache. Entries are idempotent
// (same key always maps to the same value), so concurrent writers never
// conflict and write-if-absent is the only coordination needed.
type Cache interface {
	// Lookup returns the cached similarity for a content hash.
	Lookup(contentHash string) (similarity float64, ok bool, err error)
	// Store records a similarity under a content hash if absent.
	Store(contentHash string, similarity float64) error
}

// Provider computes the similarity of one job text against the candidate
// profile. Implementations may call out to embedding services; callers wrap
// them in the Source timeout.
type Provider interface {
	Similarity(ctx context.Context, text string) (float64, error)
}

// Quantize rounds a similarity to four decimal places so cached and freshly
// computed values are bit-identical regardless of which path produced them.
func Quantize(similarity float64) float64 {
	return math.RoundToEven(similarity*10000) / 10000
}

// Source bundles the cache and optional provider handed to the scoring
// engine for one run.
type Source struct {
	Cache    Cache
	Provider Provider
	// Timeout bounds one provider call. A timeout is a cache miss, not an
	// error.
	Timeout time.Duration
}

// Similarity resolves a similarity for the given content hash, consulting
// the cache first and falling back to the provider. The second return is
// false when no similarity could be obtained; the caller scores with a zero
// semantic delta in that case.
func (s *Source) Similarity(ctx context.Context, contentHash, text string) (float64, bool) {
	if s == nil || s.Cache == nil {
		return 0, false
	}

	if sim, ok, err := s.Cache.Lookup(contentHash); err == nil && ok {
		return Quantize(sim), true
	}

	if s.Provider == nil {
		return 0, false
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	sim, err := s.Provider.Similarity(callCtx, text)
	if err != nil || math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, false
	}
	sim = Quantize(sim)

	// Store before use so a warm re-run reproduces this exact value.
	if err := s.Cache.Store(contentHash, sim); err != nil {
		return 0, false
	}
	return sim, true
}

// MemoryCache is an in-process Cache for tests and single-shot runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]float64
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]float64)}
}

// Lookup implements Cache.
func (c *MemoryCache) Lookup(contentHash string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sim, ok := c.entries[contentHash]
	return sim, ok, nil
}

// Store implements Cache with write-if-absent semantics.
func (c *MemoryCache) Store(contentHash string, similarity float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[contentHash]; !ok {
		c.entries[contentHash] = similarity
	}
	return nil
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
