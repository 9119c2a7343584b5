package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultHashingDimension is the vector size used by HashingProvider when none is given
const DefaultHashingDimension = 256

// HashingProvider is a deterministic local Provider based on feature hashing of
// character trigrams and whole tokens. It needs no network access, which makes it
// the offline default and the provider used in tests. Texts sharing many trigrams
// ("postgres", "postgresql") end up close in cosine space.
type HashingProvider struct {
	dimension int
}

// NewHashingProvider creates a hashing provider with the given dimension
func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingProvider{dimension: dimension}
}

// Embed returns the L2-normalized hashed feature vector of text
func (p *HashingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Text: text, Cause: err}
	}

	vec := make([]float32, p.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		p.addFeature(vec, "w:"+token, 2)

		padded := "^" + token + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			p.addFeature(vec, string(runes[i:i+3]), 1)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec, nil
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func (p *HashingProvider) addFeature(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(p.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// Dimension returns the vector size
func (p *HashingProvider) Dimension() int {
	return p.dimension
}
