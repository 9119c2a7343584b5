// Package types provides type definitions for structured data used throughout the career-recommender system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillID is the canonical catalog identifier of a skill
type SkillID string

// RoleID is the canonical catalog identifier of a role
type RoleID string

// CatalogFile is the serialized form of a role/skill/resource catalog
type CatalogFile struct {
	Version   string            `json:"version,omitempty" yaml:"version,omitempty"`
	Skills    []SkillDefinition `json:"skills" yaml:"skills" validate:"required,dive"`
	Roles     []RoleDefinition  `json:"roles" yaml:"roles" validate:"required,dive"`
	Resources []SkillResources  `json:"resources,omitempty" yaml:"resources,omitempty" validate:"dive"`
}

// SkillDefinition describes one skill of the catalog vocabulary
type SkillDefinition struct {
	ID             SkillID   `json:"skillId" yaml:"skillId" validate:"required"`
	DisplayName    string    `json:"displayName" yaml:"displayName" validate:"required"`
	Aliases        []string  `json:"aliases,omitempty" yaml:"aliases,omitempty" validate:"dive,required"`
	Prerequisites  []SkillID `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty" validate:"dive,required"`
	EstimatedHours float64   `json:"estimatedHours,omitempty" yaml:"estimatedHours,omitempty" validate:"gte=0"`
}

// RoleDefinition describes a role and the importance of each required skill.
// Weights are independent values in [0, 1]; they do not need to sum to 1.
type RoleDefinition struct {
	ID             RoleID              `json:"roleId" yaml:"roleId" validate:"required"`
	Name           string              `json:"name" yaml:"name" validate:"required"`
	RequiredSkills map[SkillID]float64 `json:"requiredSkills" yaml:"requiredSkills"`
}

// SkillResources lists learning resources for one skill
type SkillResources struct {
	SkillID   SkillID    `json:"skillId" yaml:"skillId" validate:"required"`
	Resources []Resource `json:"resources" yaml:"resources" validate:"dive"`
}

// Resource is a single learning resource reference
type Resource struct {
	Title          string  `json:"title" yaml:"title" validate:"required"`
	URL            string  `json:"url" yaml:"url" validate:"required"`
	Type           string  `json:"type" yaml:"type"`
	Level          string  `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced Beginner Intermediate Advanced"`
	EstimatedHours float64 `json:"estimatedHours" yaml:"estimatedHours" validate:"gte=0"`
	Relevance      float64 `json:"relevance,omitempty" yaml:"relevance,omitempty" validate:"gte=0,lte=1"`
}
