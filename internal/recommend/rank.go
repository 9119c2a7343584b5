package recommend

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-recommender/internal/types"
)

// TopK returns the first k matches. k <= 0 returns all of them.
func TopK(matches []types.RoleMatch, k int) []types.RoleMatch {
	if k <= 0 || k >= len(matches) {
		out := make([]types.RoleMatch, len(matches))
		copy(out, matches)
		return out
	}
	out := make([]types.RoleMatch, k)
	copy(out, matches[:k])
	return out
}

// generateNotes creates a brief explanation of a role score.
func generateNotes(m types.RoleMatch) string {
	if m.TotalWeight == 0 {
		return "Role has no weighted skill requirements"
	}

	var parts []string
	names := joinSkillIDs(m.MatchedSkills)
	switch {
	case m.OverallScore >= 1.0:
		parts = append(parts, fmt.Sprintf("All required skills matched (%s)", names))
	case m.OverallScore >= 0.7:
		parts = append(parts, fmt.Sprintf("Strong skill match (%s)", names))
	case m.OverallScore >= 0.4:
		parts = append(parts, fmt.Sprintf("Moderate skill match (%s)", names))
	case len(m.MatchedSkills) > 0:
		parts = append(parts, fmt.Sprintf("Weak skill match (%s)", names))
	default:
		parts = append(parts, "No skill matches")
	}

	if len(m.MissingSkills) > 0 {
		top := m.MissingSkills[0]
		parts = append(parts, fmt.Sprintf("Biggest gap: %s (weight %.2f)", top.SkillID, top.Weight))
	}

	return strings.Join(parts, ". ")
}

func joinSkillIDs(ids []types.SkillID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
