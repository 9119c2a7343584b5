package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedProvider_HitAfterMiss(t *testing.T) {
	inner := newCountingProvider()
	cached, err := NewCachedProvider(inner, CacheOptions{Size: 8})
	require.NoError(t, err)

	first, err := cached.Embed(context.Background(), "kubernetes")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "kubernetes")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())

	stats := cached.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.ProviderCalls)
	assert.Equal(t, 1, stats.Len)
}

func TestCachedProvider_ConcurrentMissesShareOneCall(t *testing.T) {
	inner := newCountingProvider()
	inner.delay = 50 * time.Millisecond
	cached, err := NewCachedProvider(inner, CacheOptions{Size: 8, Timeout: time.Second})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := cached.Embed(context.Background(), "terraform")
			assert.NoError(t, err)
			assert.Len(t, vec, inner.Dimension())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestCachedProvider_ConcurrentDistinctKeys(t *testing.T) {
	inner := newCountingProvider()
	cached, err := NewCachedProvider(inner, CacheOptions{Size: 4})
	require.NoError(t, err)

	texts := []string{"go", "rust", "java", "python", "sql", "docker", "linux", "aws"}
	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, text := range texts {
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				_, err := cached.Embed(context.Background(), text)
				assert.NoError(t, err)
			}(text)
		}
	}
	wg.Wait()

	assert.LessOrEqual(t, cached.Stats().Len, 4)
}

func TestCachedProvider_TimeoutIsProviderError(t *testing.T) {
	inner := newCountingProvider()
	inner.delay = time.Second
	cached, err := NewCachedProvider(inner, CacheOptions{Timeout: 10 * time.Millisecond})
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), "slow")
	require.Error(t, err)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "slow", perr.Text)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out")
}

func TestCachedProvider_CallerCancellation(t *testing.T) {
	inner := newCountingProvider()
	inner.delay = 100 * time.Millisecond
	cached, err := NewCachedProvider(inner, CacheOptions{Timeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = cached.Embed(ctx, "abandoned")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, context.Canceled))

	// the orphaned call still completes and fills the cache
	assert.Eventually(t, func() bool {
		return cached.Stats().Len == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCachedProvider_FailuresAreNotCached(t *testing.T) {
	inner := newCountingProvider()
	inner.fail["flaky"] = true
	cached, err := NewCachedProvider(inner, CacheOptions{})
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), "flaky")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "upstream unavailable")

	delete(inner.fail, "flaky")
	_, err = cached.Embed(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
	assert.Equal(t, int64(1), cached.Stats().Failures)
}

type wrongDimensionProvider struct{}

func (wrongDimensionProvider) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 2}, nil
}
func (wrongDimensionProvider) Dimension() int { return 3 }

func TestCachedProvider_DimensionMismatch(t *testing.T) {
	cached, err := NewCachedProvider(wrongDimensionProvider{}, CacheOptions{})
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
	assert.Equal(t, 0, cached.Stats().Len)
}

func TestCachedProvider_StoreTier(t *testing.T) {
	store := newMemoryStore()
	inner := newCountingProvider()

	first, err := NewCachedProvider(inner, CacheOptions{Store: store, Model: "hash-32"})
	require.NoError(t, err)
	vec, err := first.Embed(context.Background(), "graphql")
	require.NoError(t, err)
	assert.Equal(t, int64(1), inner.calls.Load())

	// a fresh cache (another process) reads through the store
	second, err := NewCachedProvider(inner, CacheOptions{Store: store, Model: "hash-32"})
	require.NoError(t, err)
	again, err := second.Embed(context.Background(), "graphql")
	require.NoError(t, err)

	assert.Equal(t, vec, again)
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, int64(1), second.Stats().StoreHits)
}

func TestCachedProvider_Purge(t *testing.T) {
	inner := newCountingProvider()
	cached, err := NewCachedProvider(inner, CacheOptions{})
	require.NoError(t, err)

	_, err = cached.Embed(context.Background(), "go")
	require.NoError(t, err)
	cached.Purge()
	_, err = cached.Embed(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
}

func TestNewCachedProvider_RequiresProvider(t *testing.T) {
	_, err := NewCachedProvider(nil, CacheOptions{})
	assert.Error(t, err)
}
