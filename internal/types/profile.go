// Package types provides type definitions for structured data used throughout the career-recommender system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Match methods recorded on a SkillMatch
const (
	MatchMethodExact     = "exact"
	MatchMethodAlias     = "alias"
	MatchMethodEmbedding = "embedding"
	MatchMethodLexical   = "lexical"
)

// Skill error kinds recorded on a profile
const (
	SkillErrorInvalidInput      = "invalid_skill_input"
	SkillErrorEmbeddingProvider = "embedding_provider"
)

// SkillMatch records how a raw skill resolved to a catalog skill
type SkillMatch struct {
	Raw        string  `json:"raw"`
	Normalized string  `json:"normalized"`
	SkillID    SkillID `json:"skill_id"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// UnmatchedSkill is a raw skill that did not resolve to any catalog skill.
// BestCandidate and BestScore are kept for user feedback.
type UnmatchedSkill struct {
	Raw           string  `json:"raw"`
	Normalized    string  `json:"normalized,omitempty"`
	BestCandidate SkillID `json:"best_candidate,omitempty"`
	BestScore     float64 `json:"best_score,omitempty"`
}

// SkillError is a per-skill failure collected alongside partial results
type SkillError struct {
	Raw     string `json:"raw"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// UserSkillProfile is the per-request result of matching a user's raw skills
type UserSkillProfile struct {
	RawSkills     []string            `json:"raw_skills"`
	MatchedSkills []SkillID           `json:"matched_skills"`
	Confidence    map[SkillID]float64 `json:"confidence"`
	Matches       []SkillMatch        `json:"matches"`
	Unmatched     []UnmatchedSkill    `json:"unmatched"`
	Errors        []SkillError        `json:"errors,omitempty"`
}

// NewUserSkillProfile returns an empty profile for the given raw skills
func NewUserSkillProfile(raw []string) *UserSkillProfile {
	rawCopy := make([]string, len(raw))
	copy(rawCopy, raw)
	return &UserSkillProfile{
		RawSkills:     rawCopy,
		MatchedSkills: []SkillID{},
		Confidence:    make(map[SkillID]float64),
		Matches:       []SkillMatch{},
		Unmatched:     []UnmatchedSkill{},
	}
}

// Has reports whether the profile matched the given skill
func (p *UserSkillProfile) Has(id SkillID) bool {
	if p == nil {
		return false
	}
	_, ok := p.Confidence[id]
	return ok
}
