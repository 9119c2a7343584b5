// Package types provides type definitions for structured data used throughout the career-recommender system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MissingSkill is a required skill of a role that the user has not matched
type MissingSkill struct {
	SkillID SkillID `json:"skill_id"`
	Weight  float64 `json:"weight"`
}

// RoleMatch is the score of one role against a user profile
type RoleMatch struct {
	RoleID               RoleID         `json:"role_id"`
	Name                 string         `json:"name"`
	OverallScore         float64        `json:"overall_score"`
	MatchedWeight        float64        `json:"matched_weight"`
	TotalWeight          float64        `json:"total_weight"`
	MatchedSkills        []SkillID      `json:"matched_skills"`
	MissingSkills        []MissingSkill `json:"missing_skills"`
	CompletionPercentage float64        `json:"completion_percentage"`
	Notes                string         `json:"notes,omitempty"`
}

// LearningStep is one skill to learn within a roadmap
type LearningStep struct {
	SkillID        SkillID    `json:"skill_id"`
	DisplayName    string     `json:"display_name"`
	Weight         float64    `json:"weight"`
	EstimatedHours float64    `json:"estimated_hours"`
	Resources      []Resource `json:"resources"`
}

// Phase groups consecutive roadmap steps for presentation
type Phase struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Skills      []SkillID `json:"skills"`
	Hours       float64   `json:"hours"`
}

// Roadmap is an ordered sequence of learning steps covering a gap
type Roadmap struct {
	TargetRoleID RoleID         `json:"target_role_id,omitempty"`
	Steps        []LearningStep `json:"steps"`
	Phases       []Phase        `json:"phases"`
	TotalHours   float64        `json:"total_hours"`
}

// Recommendation is the engine output for a role recommendation request
type Recommendation struct {
	RequestID string            `json:"request_id"`
	Profile   *UserSkillProfile `json:"profile"`
	Roles     []RoleMatch       `json:"roles"`
}

// LearningPlan is the engine output for a learning plan request
type LearningPlan struct {
	RequestID string            `json:"request_id"`
	Profile   *UserSkillProfile `json:"profile"`
	Gap       RoleMatch         `json:"gap"`
	Roadmap   *Roadmap          `json:"roadmap"`
}
