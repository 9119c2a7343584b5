// Package embedding provides text embedding providers and a concurrency-safe vector cache.
package embedding

import (
	"context"
	"math"

	"github.com/viterin/vek/vek32"
)

// Provider maps text to a dense vector of fixed dimension
type Provider interface {
	// Embed returns the embedding for text. Returned slices must not be modified.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the length of every vector produced by Embed
	Dimension() int
}

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or with zero norm have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	normA := math.Sqrt(float64(vek32.Dot(a, a)))
	normB := math.Sqrt(float64(vek32.Dot(b, b)))
	if normA == 0 || normB == 0 {
		return 0
	}
	return float64(vek32.Dot(a, b)) / (normA * normB)
}
