// Package recommend scores catalog roles against a user's matched skills and computes skill gaps.
package recommend

import (
	"math"
	"sort"

	"github.com/jonathan/career-recommender/internal/types"
)

// RoleSource is the read-only view of the catalog needed for scoring
type RoleSource interface {
	Roles() []types.RoleDefinition
	Role(id types.RoleID) (types.RoleDefinition, bool)
}

// ScoreRoles scores every catalog role against profile, sorted by OverallScore
// descending with ties broken by RoleID ascending. It never mutates its inputs.
// An empty profile yields every role at score 0 with its full missing-skill list.
func ScoreRoles(profile *types.UserSkillProfile, roles RoleSource) []types.RoleMatch {
	defs := roles.Roles()
	matches := make([]types.RoleMatch, 0, len(defs))
	for _, role := range defs {
		matches = append(matches, scoreRole(profile, role))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].RoleID < matches[j].RoleID
	})
	return matches
}

// ComputeGap scores a single explicitly chosen role
func ComputeGap(profile *types.UserSkillProfile, roleID types.RoleID, roles RoleSource) (types.RoleMatch, error) {
	role, ok := roles.Role(roleID)
	if !ok {
		return types.RoleMatch{}, &UnknownRoleError{RoleID: roleID}
	}
	return scoreRole(profile, role), nil
}

// scoreRole computes matchedWeight / totalWeight for one role.
// A role without required weight scores 0.
func scoreRole(profile *types.UserSkillProfile, role types.RoleDefinition) types.RoleMatch {
	required := make([]types.SkillID, 0, len(role.RequiredSkills))
	for id := range role.RequiredSkills {
		required = append(required, id)
	}
	sort.Slice(required, func(i, j int) bool { return required[i] < required[j] })

	matchedWeight := 0.0
	totalWeight := 0.0
	matched := make([]types.SkillID, 0)
	missing := make([]types.MissingSkill, 0)

	for _, id := range required {
		weight := role.RequiredSkills[id]
		totalWeight += weight
		if profile.Has(id) {
			matchedWeight += weight
			matched = append(matched, id)
		} else {
			missing = append(missing, types.MissingSkill{SkillID: id, Weight: weight})
		}
	}

	sortMissing(missing)

	score := 0.0
	if totalWeight > 0 {
		score = matchedWeight / totalWeight
	}

	match := types.RoleMatch{
		RoleID:               role.ID,
		Name:                 role.Name,
		OverallScore:         score,
		MatchedWeight:        matchedWeight,
		TotalWeight:          totalWeight,
		MatchedSkills:        matched,
		MissingSkills:        missing,
		CompletionPercentage: CompletionPercentage(len(matched), len(required)),
	}
	match.Notes = generateNotes(match)
	return match
}

// sortMissing orders missing skills by weight descending, then SkillID ascending
func sortMissing(missing []types.MissingSkill) {
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Weight != missing[j].Weight {
			return missing[i].Weight > missing[j].Weight
		}
		return missing[i].SkillID < missing[j].SkillID
	})
}

// CompletionPercentage is the share of required skills matched, by count,
// rounded to one decimal place. Roles without required skills are 0% complete.
func CompletionPercentage(matched, required int) float64 {
	if required <= 0 {
		return 0
	}
	return math.Round(float64(matched)/float64(required)*1000) / 10
}
