package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// countingProvider wraps a deterministic provider and counts calls
type countingProvider struct {
	inner Provider
	calls atomic.Int64
	delay time.Duration
	fail  map[string]bool
}

func newCountingProvider() *countingProvider {
	return &countingProvider{inner: NewHashingProvider(32), fail: map[string]bool{}}
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.fail[text] {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return p.inner.Embed(ctx, text)
}

func (p *countingProvider) Dimension() int {
	return p.inner.Dimension()
}

// memoryStore is an in-memory VectorStore
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]float32
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]float32{}}
}

func (s *memoryStore) Get(_ context.Context, model, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[model+"|"+text], nil
}

func (s *memoryStore) Put(_ context.Context, model, text string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[model+"|"+text] = vec
	return nil
}
