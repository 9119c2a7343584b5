// Package normalize canonicalizes raw skill text before it is matched against the catalog.
package normalize

import (
	"strings"
	"unicode"

	"github.com/jonathan/career-recommender/internal/types"
)

// DefaultAliases maps common skill name variants to canonical names.
// Catalog aliases are layered on top of these and win on conflict.
var DefaultAliases = map[string]string{
	"golang":     "go",
	"go lang":    "go",
	"js":         "javascript",
	"ecmascript": "javascript",
	"ts":         "typescript",
	"k8s":        "kubernetes",
	"react.js":   "react",
	"reactjs":    "react",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"nodejs":     "node.js",
	"py":         "python",
	"python3":    "python",
	"postgresql": "postgres",

	// shorthand
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"ml":                  "machine learning",
	"dl":                  "deep learning",
	"nlp":                 "natural language processing",
}

// Normalized is the canonical form of one raw skill
type Normalized struct {
	Raw  string `json:"raw"`
	Text string `json:"text"`
	// Aliased is true when Text came from the alias table
	Aliased bool `json:"aliased"`
}

// Normalizer applies cleaning and an alias table to raw skill text.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	aliases map[string]string
}

// New builds a Normalizer from DefaultAliases overlaid with the given aliases.
// Alias keys are cleaned with the same rules as input; targets are cleaned too.
func New(aliases map[string]string) *Normalizer {
	table := make(map[string]string, len(DefaultAliases)+len(aliases))
	for variant, canonical := range DefaultAliases {
		addAlias(table, variant, canonical)
	}
	for variant, canonical := range aliases {
		addAlias(table, variant, canonical)
	}
	return &Normalizer{aliases: table}
}

// NewFromCatalogAliases builds a Normalizer from a catalog alias table
func NewFromCatalogAliases(aliases map[string]types.SkillID) *Normalizer {
	converted := make(map[string]string, len(aliases))
	for variant, id := range aliases {
		converted[variant] = string(id)
	}
	return New(converted)
}

func addAlias(table map[string]string, variant, canonical string) {
	key := Clean(variant)
	target := Clean(canonical)
	if key == "" || target == "" || key == target {
		return
	}
	table[key] = target
}

// Normalize lowercases the raw skill, strips punctuation and whitespace runs and
// resolves aliases. Unknown tokens pass through unchanged.
func (n *Normalizer) Normalize(raw string) (Normalized, error) {
	if strings.TrimSpace(raw) == "" {
		return Normalized{}, &InvalidSkillInputError{Raw: raw, Reason: "empty or whitespace-only"}
	}

	text := Clean(raw)
	if text == "" {
		return Normalized{}, &InvalidSkillInputError{Raw: raw, Reason: "no letters or digits"}
	}

	if canonical, ok := n.aliases[text]; ok {
		return Normalized{Raw: raw, Text: canonical, Aliased: true}, nil
	}
	return Normalized{Raw: raw, Text: text}, nil
}

// NormalizeAll normalizes every raw skill, collecting per-skill errors instead of aborting.
// Duplicates (by normalized text) are dropped, keeping the first occurrence.
func (n *Normalizer) NormalizeAll(raw []string) ([]Normalized, []types.SkillError) {
	out := make([]Normalized, 0, len(raw))
	var errs []types.SkillError
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		norm, err := n.Normalize(r)
		if err != nil {
			errs = append(errs, types.SkillError{
				Raw:     r,
				Kind:    types.SkillErrorInvalidInput,
				Message: err.Error(),
			})
			continue
		}
		if seen[norm.Text] {
			continue
		}
		seen[norm.Text] = true
		out = append(out, norm)
	}

	return out, errs
}

// Clean lowercases s, replaces separators and punctuation with spaces and collapses
// whitespace. The characters + # and . survive inside tokens so that names like
// c++, c# and node.js keep their meaning; trailing dots are dropped. Tokens without
// any letter or digit are removed.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' || r == '#' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if !hasAlphanumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return strings.Join(tokens, " ")
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
