// Package roadmap sequences a skill gap into a time-estimated learning roadmap.
package roadmap

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/career-recommender/internal/types"
)

// Default roadmap settings
const (
	DefaultResourcesPerSkill = 3
	DefaultHours             = 20.0
	DefaultRelatedDiscount   = 0.25
)

// Source is the read-only catalog view the assembler needs
type Source interface {
	Skill(id types.SkillID) (types.SkillDefinition, bool)
	Resources(id types.SkillID) []types.Resource
}

// Options configures Build
type Options struct {
	// ResourcesPerSkill is K, the maximum resources per step (default 3)
	ResourcesPerSkill int
	// DefaultHours is used when neither the skill nor its resources carry an estimate
	DefaultHours float64
	// RelatedDiscount scales down hours by the mean confidence of matched
	// prerequisites. 0 disables the discount.
	RelatedDiscount float64
	// Profile supplies matched prerequisites for the discount; may be nil
	Profile      *types.UserSkillProfile
	TargetRoleID types.RoleID
}

// DefaultOptions returns options with the documented defaults
func DefaultOptions() Options {
	return Options{
		ResourcesPerSkill: DefaultResourcesPerSkill,
		DefaultHours:      DefaultHours,
		RelatedDiscount:   DefaultRelatedDiscount,
	}
}

var phaseDefinitions = []struct {
	name        string
	description string
}{
	{"Foundation Skills", "Build the fundamentals the role depends on"},
	{"Core Development", "Develop the core competencies of the role"},
	{"Advanced Topics", "Round out the profile with advanced topics"},
}

var levelRank = map[string]int{
	"beginner":     0,
	"intermediate": 1,
	"advanced":     2,
}

// Build turns missing skills into an ordered roadmap. Skills are ordered by
// weight descending; among equal weights prerequisites come first and remaining
// ties go by SkillID. A prerequisite cycle among the missing skills fails with
// DependencyCycleError. Skills without resources still get a step.
func Build(missing []types.MissingSkill, source Source, opts Options) (*types.Roadmap, error) {
	if opts.ResourcesPerSkill <= 0 {
		opts.ResourcesPerSkill = DefaultResourcesPerSkill
	}
	if opts.DefaultHours <= 0 {
		opts.DefaultHours = DefaultHours
	}

	missing = dedupe(missing)
	ids := make([]types.SkillID, len(missing))
	skills := make(map[types.SkillID]types.SkillDefinition, len(missing))
	for i, m := range missing {
		skill, ok := source.Skill(m.SkillID)
		if !ok {
			return nil, &UnknownSkillError{SkillID: m.SkillID}
		}
		ids[i] = m.SkillID
		skills[m.SkillID] = skill
	}

	pg, err := buildGraph(ids, func(id types.SkillID) []types.SkillID {
		return skills[id].Prerequisites
	})
	if err != nil {
		return nil, err
	}

	roadmap := &types.Roadmap{
		TargetRoleID: opts.TargetRoleID,
		Steps:        make([]types.LearningStep, 0, len(missing)),
		Phases:       []types.Phase{},
	}

	for _, m := range orderMissing(missing, pg) {
		skill := skills[m.SkillID]
		resources := selectResources(source.Resources(m.SkillID), opts.ResourcesPerSkill)
		hours := estimateHours(skill, resources, opts)

		roadmap.Steps = append(roadmap.Steps, types.LearningStep{
			SkillID:        m.SkillID,
			DisplayName:    skill.DisplayName,
			Weight:         m.Weight,
			EstimatedHours: hours,
			Resources:      resources,
		})
		roadmap.TotalHours += hours
	}

	roadmap.TotalHours = round1(roadmap.TotalHours)
	roadmap.Phases = buildPhases(roadmap.Steps)
	return roadmap, nil
}

func dedupe(missing []types.MissingSkill) []types.MissingSkill {
	seen := make(map[types.SkillID]int, len(missing))
	out := make([]types.MissingSkill, 0, len(missing))
	for _, m := range missing {
		if i, ok := seen[m.SkillID]; ok {
			if m.Weight > out[i].Weight {
				out[i].Weight = m.Weight
			}
			continue
		}
		seen[m.SkillID] = len(out)
		out = append(out, m)
	}
	return out
}

// selectResources keeps up to k resources by relevance descending, then level
// (beginner first), then catalog order.
func selectResources(resources []types.Resource, k int) []types.Resource {
	sorted := append([]types.Resource{}, resources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Relevance != sorted[j].Relevance {
			return sorted[i].Relevance > sorted[j].Relevance
		}
		return rankLevel(sorted[i].Level) < rankLevel(sorted[j].Level)
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

func rankLevel(level string) int {
	if rank, ok := levelRank[strings.ToLower(level)]; ok {
		return rank
	}
	return len(levelRank)
}

// estimateHours uses the skill's own estimate, else the selected resources' hours,
// else the default, then applies the related-skill discount.
func estimateHours(skill types.SkillDefinition, resources []types.Resource, opts Options) float64 {
	hours := skill.EstimatedHours
	if hours <= 0 {
		for _, r := range resources {
			hours += r.EstimatedHours
		}
	}
	if hours <= 0 {
		hours = opts.DefaultHours
	}

	if opts.RelatedDiscount > 0 && opts.Profile != nil {
		total, n := 0.0, 0
		for _, p := range skill.Prerequisites {
			if conf, ok := opts.Profile.Confidence[p]; ok {
				total += conf
				n++
			}
		}
		if n > 0 {
			discount := opts.RelatedDiscount * (total / float64(n))
			hours *= math.Max(0, 1-discount)
		}
	}
	return round1(hours)
}

// buildPhases splits steps into up to three consecutive phases. The first two
// take max(1, n/3) steps each and the last phase takes the rest; empty phases
// are omitted.
func buildPhases(steps []types.LearningStep) []types.Phase {
	phases := []types.Phase{}
	n := len(steps)
	per := max(1, n/len(phaseDefinitions))

	start := 0
	for i, def := range phaseDefinitions {
		size := min(per, n-start)
		if i == len(phaseDefinitions)-1 {
			size = n - start
		}
		if size <= 0 {
			break
		}

		phase := types.Phase{
			Name:        def.name,
			Description: def.description,
			Skills:      make([]types.SkillID, 0, size),
		}
		for _, step := range steps[start : start+size] {
			phase.Skills = append(phase.Skills, step.SkillID)
			phase.Hours += step.EstimatedHours
		}
		phase.Hours = round1(phase.Hours)
		phases = append(phases, phase)
		start += size
	}
	return phases
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
