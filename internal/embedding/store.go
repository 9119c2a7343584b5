package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// VectorStore is a persistent or shared tier behind the in-memory cache.
// Get returns (nil, nil) when the vector is not stored.
type VectorStore interface {
	Get(ctx context.Context, model, text string) ([]float32, error)
	Put(ctx context.Context, model, text string, vec []float32) error
}

// EncodeVector serializes a vector as little-endian float32 values
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector parses the output of EncodeVector
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding: %d bytes is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}

// TieredStore chains vector stores, fastest first. A hit in a slower tier is
// copied into the faster ones.
type TieredStore struct {
	tiers []VectorStore
}

// NewTieredStore returns a store over the non-nil tiers, in order
func NewTieredStore(tiers ...VectorStore) *TieredStore {
	t := &TieredStore{}
	for _, tier := range tiers {
		if tier != nil {
			t.tiers = append(t.tiers, tier)
		}
	}
	return t
}

// Len returns the number of tiers
func (t *TieredStore) Len() int {
	return len(t.tiers)
}

// Get returns the first stored vector. Tier errors are only reported when no
// tier has the vector.
func (t *TieredStore) Get(ctx context.Context, model, text string) ([]float32, error) {
	var errs []error
	for i, tier := range t.tiers {
		vec, err := tier.Get(ctx, model, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if vec == nil {
			continue
		}
		for _, faster := range t.tiers[:i] {
			_ = faster.Put(ctx, model, text, vec)
		}
		return vec, nil
	}
	return nil, errors.Join(errs...)
}

// Put writes vec to every tier
func (t *TieredStore) Put(ctx context.Context, model, text string, vec []float32) error {
	var errs []error
	for _, tier := range t.tiers {
		if err := tier.Put(ctx, model, text, vec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
