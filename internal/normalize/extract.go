package normalize

import "strings"

// stopwords are dropped when extracting skill candidates from free text
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"i": true, "in": true, "is": true, "it": true, "my": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "was": true, "were": true,
	"with": true, "using": true, "used": true, "experience": true, "years": true,
	"year": true, "skills": true, "skilled": true, "expert": true, "proficient": true,
	"knowledge": true, "familiar": true, "strong": true,
}

// SplitManualInput splits a manually entered skill list on commas, semicolons,
// pipes and newlines. Empty entries are dropped; order is preserved.
func SplitManualInput(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractCandidates turns free text (such as an extracted resume) into skill
// candidates: every non-stopword token plus every adjacent pair of non-stopword
// tokens, so multi-word skills like "machine learning" can match. Candidates are
// deduplicated in order of first appearance.
func ExtractCandidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	for _, line := range SplitManualInput(text) {
		var prev string
		for _, tok := range strings.Fields(Clean(line)) {
			if stopwords[tok] {
				prev = ""
				continue
			}
			add(tok)
			if prev != "" {
				add(prev + " " + tok)
			}
			prev = tok
		}
	}

	return out
}
