package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonathan/career-recommender/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Default cache settings
const (
	DefaultCacheSize = 4096
	DefaultTimeout   = 5 * time.Second
)

// CacheOptions configures a CachedProvider
type CacheOptions struct {
	// Size bounds the number of vectors kept in memory (LRU eviction)
	Size int
	// Timeout bounds every call to the wrapped provider
	Timeout time.Duration
	// Store is an optional second-tier vector store shared across processes
	Store VectorStore
	// Model namespaces vectors in Store
	Model string
	Log   *logger.Logger
}

// CacheStats reports cache activity counters
type CacheStats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	StoreHits     int64 `json:"store_hits"`
	ProviderCalls int64 `json:"provider_calls"`
	Failures      int64 `json:"failures"`
	Len           int   `json:"len"`
}

// CachedProvider wraps a Provider with a bounded LRU cache keyed by text.
// Concurrent misses for the same text share one provider call. Failures are
// never cached. It is safe for concurrent use.
type CachedProvider struct {
	provider Provider
	cache    *lru.Cache[string, []float32]
	group    singleflight.Group
	timeout  time.Duration
	store    VectorStore
	model    string
	log      *logger.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	storeHits     atomic.Int64
	providerCalls atomic.Int64
	failures      atomic.Int64
}

// NewCachedProvider wraps provider with an LRU cache
func NewCachedProvider(provider Provider, opts CacheOptions) (*CachedProvider, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultCacheSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	cache, err := lru.New[string, []float32](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	return &CachedProvider{
		provider: provider,
		cache:    cache,
		timeout:  opts.Timeout,
		store:    opts.Store,
		model:    opts.Model,
		log:      opts.Log,
	}, nil
}

// Embed returns the cached vector for text, calling the wrapped provider on a miss.
// If ctx ends first the caller gets a ProviderError while the shared call keeps
// running and still populates the cache.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		c.hits.Add(1)
		return vec, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan(text, func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), text)
	})

	select {
	case <-ctx.Done():
		return nil, &ProviderError{Text: text, Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

func (c *CachedProvider) load(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}

	if c.store != nil {
		vec, err := c.store.Get(ctx, c.model, text)
		if err != nil {
			c.log.Warn("vector store lookup failed", "text", text, "error", err)
		} else if len(vec) == c.provider.Dimension() {
			c.storeHits.Add(1)
			c.cache.Add(text, vec)
			return vec, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.providerCalls.Add(1)
	vec, err := c.provider.Embed(callCtx, text)
	if err != nil {
		c.failures.Add(1)
		return nil, asProviderError(text, err)
	}
	if len(vec) != c.provider.Dimension() {
		c.failures.Add(1)
		return nil, &ProviderError{
			Text:  text,
			Cause: fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), c.provider.Dimension()),
		}
	}

	c.cache.Add(text, vec)
	if c.store != nil {
		if err := c.store.Put(ctx, c.model, text, vec); err != nil {
			c.log.Warn("vector store write failed", "text", text, "error", err)
		}
	}
	return vec, nil
}

// Dimension returns the wrapped provider's dimension
func (c *CachedProvider) Dimension() int {
	return c.provider.Dimension()
}

// Stats returns a snapshot of cache counters
func (c *CachedProvider) Stats() CacheStats {
	return CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		StoreHits:     c.storeHits.Load(),
		ProviderCalls: c.providerCalls.Load(),
		Failures:      c.failures.Load(),
		Len:           c.cache.Len(),
	}
}

// Purge drops every cached vector
func (c *CachedProvider) Purge() {
	c.cache.Purge()
}
