package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	sim   float64
	err   error
	calls int
	delay time.Duration
}

func (p *stubProvider) Similarity(ctx context.Context, text string) (float64, error) {
	p.calls++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return p.sim, p.err
}

func TestMemoryCache_WriteIfAbsent(t *testing.T) {
	cache := NewMemoryCache()

	require.NoError(t, cache.Store("hash-1", 0.75))
	require.NoError(t, cache.Store("hash-1", 0.25)) // second writer loses

	sim, ok, err := cache.Lookup("hash-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.75, sim)
	assert.Equal(t, 1, cache.Len())
}

func TestSource_CacheHitSkipsProvider(t *testing.T) {
	cache := NewMemoryCache()
	require.NoError(t, cache.Store("h", 0.8))
	provider := &stubProvider{sim: 0.1}
	src := &Source{Cache: cache, Provider: provider}

	sim, ok := src.Similarity(context.Background(), "h", "text")
	require.True(t, ok)
	assert.Equal(t, 0.8, sim)
	assert.Zero(t, provider.calls)
}

func TestSource_MissComputesAndStores(t *testing.T) {
	cache := NewMemoryCache()
	provider := &stubProvider{sim: 0.654321}
	src := &Source{Cache: cache, Provider: provider}

	sim, ok := src.Similarity(context.Background(), "h", "text")
	require.True(t, ok)
	assert.Equal(t, Quantize(0.654321), sim)

	// Warm re-run returns the identical value without another call.
	again, ok := src.Similarity(context.Background(), "h", "text")
	require.True(t, ok)
	assert.Equal(t, sim, again)
	assert.Equal(t, 1, provider.calls)
}

func TestSource_ProviderErrorFailsClosed(t *testing.T) {
	src := &Source{Cache: NewMemoryCache(), Provider: &stubProvider{err: errors.New("boom")}}

	_, ok := src.Similarity(context.Background(), "h", "text")
	assert.False(t, ok)
}

func TestSource_TimeoutIsACacheMiss(t *testing.T) {
	provider := &stubProvider{sim: 0.9, delay: 50 * time.Millisecond}
	src := &Source{Cache: NewMemoryCache(), Provider: provider, Timeout: time.Millisecond}

	_, ok := src.Similarity(context.Background(), "h", "text")
	assert.False(t, ok)
}

func TestSource_NilSafe(t *testing.T) {
	src := &Source{Cache: NewMemoryCache()}
	_, ok := src.Similarity(context.Background(), "h", "text")
	assert.False(t, ok)

	var nilSrc *Source
	_, ok = nilSrc.Similarity(context.Background(), "h", "text")
	assert.False(t, ok)
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 0.6543, Quantize(0.654321))
	assert.Equal(t, 1.0, Quantize(0.99999))
	assert.Equal(t, 0.0, Quantize(0.00001))
}
