// Package matching resolves normalized skills to catalog skills by exact lookup,
// embedding similarity or, when vectors are unavailable, edit-distance similarity.
package matching

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/jonathan/career-recommender/internal/embedding"
	"github.com/jonathan/career-recommender/internal/logger"
	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/types"
)

// Default matcher settings
const (
	DefaultThreshold        = 0.75
	DefaultLexicalThreshold = 0.80
)

// Options configures an Index
type Options struct {
	// Threshold is the minimum cosine similarity for an embedding match
	Threshold float64
	// LexicalThreshold is the minimum edit-distance ratio for a lexical match
	LexicalThreshold float64
	// LexicalFallback allows the index to match lexically when catalog vectors
	// cannot be built. Without it a provider failure at build time is an error.
	LexicalFallback bool
	// Concurrency bounds parallel embedding calls (default GOMAXPROCS)
	Concurrency int
	Log         *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.LexicalThreshold <= 0 {
		o.LexicalThreshold = DefaultLexicalThreshold
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	return o
}

// Index is the match structure for one catalog snapshot. It is immutable once
// built and safe for concurrent use.
type Index struct {
	catalog  *catalog.Catalog
	provider embedding.Provider
	opts     Options

	exact   map[string]types.SkillID
	aliases map[string]types.SkillID
	ids     []types.SkillID
	// terms holds every cleaned name of ids[i], used by the lexical matcher
	terms [][]string
	// vectors is aligned with ids; nil when the index runs lexically
	vectors [][]float32
}

// NewIndex builds the index for c, embedding every catalog skill's display name
// through provider. provider may be nil when opts.LexicalFallback is set.
func NewIndex(ctx context.Context, c *catalog.Catalog, provider embedding.Provider, opts Options) (*Index, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	opts = opts.withDefaults()

	idx := &Index{
		catalog:  c,
		provider: provider,
		opts:     opts,
		exact:    c.Vocabulary(),
		aliases:  c.Aliases(),
		ids:      c.SkillIDs(),
	}

	idx.terms = make([][]string, len(idx.ids))
	for i, id := range idx.ids {
		idx.terms[i] = skillTerms(c, id)
	}

	if provider == nil {
		if !opts.LexicalFallback {
			return nil, fmt.Errorf("no embedding provider configured and lexical fallback disabled")
		}
		opts.Log.Info("no embedding provider, matching lexically", "skills", len(idx.ids))
		return idx, nil
	}

	vectors, err := idx.embedCatalog(ctx)
	if err != nil {
		if !opts.LexicalFallback {
			return nil, fmt.Errorf("failed to embed catalog skills: %w", err)
		}
		opts.Log.Warn("failed to embed catalog skills, matching lexically", "error", err)
		return idx, nil
	}
	idx.vectors = vectors
	return idx, nil
}

func (idx *Index) embedCatalog(ctx context.Context) ([][]float32, error) {
	vectors := make([][]float32, len(idx.ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.Concurrency)
	for i, id := range idx.ids {
		g.Go(func() error {
			vec, err := idx.provider.Embed(gctx, skillText(idx.catalog, id))
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Catalog returns the snapshot the index was built from
func (idx *Index) Catalog() *catalog.Catalog {
	return idx.catalog
}

// Lexical reports whether the index matches by edit distance instead of embeddings
func (idx *Index) Lexical() bool {
	return idx.vectors == nil
}

// skillText is the phrase embedded for a catalog skill
func skillText(c *catalog.Catalog, id types.SkillID) string {
	skill, _ := c.Skill(id)
	if text := normalize.Clean(skill.DisplayName); text != "" {
		return text
	}
	return normalize.Clean(string(id))
}

func skillTerms(c *catalog.Catalog, id types.SkillID) []string {
	skill, _ := c.Skill(id)
	seen := make(map[string]bool)
	var terms []string
	for _, t := range append([]string{string(id), skill.DisplayName}, skill.Aliases...) {
		key := normalize.Clean(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, key)
	}
	return terms
}
