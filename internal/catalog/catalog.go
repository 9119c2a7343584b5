// Package catalog loads, validates and serves the immutable role/skill/resource catalog.
package catalog

import (
	"fmt"
	"sort"

	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/types"
)

// Catalog is a validated, read-only snapshot of a catalog file.
// All accessors return copies so callers cannot mutate shared state.
type Catalog struct {
	source string
	file   types.CatalogFile

	skills     map[types.SkillID]types.SkillDefinition
	roles      map[types.RoleID]types.RoleDefinition
	skillIDs   []types.SkillID
	roleIDs    []types.RoleID
	aliases    map[string]types.SkillID
	vocabulary map[string]types.SkillID
	resources  map[types.SkillID][]types.Resource
}

// New validates the cross references of file and builds a Catalog from it.
// source names the origin of the data in errors.
func New(file types.CatalogFile, source string) (*Catalog, error) {
	c := &Catalog{
		source:     source,
		file:       copyFile(file),
		skills:     make(map[types.SkillID]types.SkillDefinition, len(file.Skills)),
		roles:      make(map[types.RoleID]types.RoleDefinition, len(file.Roles)),
		aliases:    make(map[string]types.SkillID),
		vocabulary: make(map[string]types.SkillID),
		resources:  make(map[types.SkillID][]types.Resource),
	}

	for _, skill := range c.file.Skills {
		if _, dup := c.skills[skill.ID]; dup {
			return nil, c.fail("duplicate skillId %q", skill.ID)
		}
		c.skills[skill.ID] = skill
		c.skillIDs = append(c.skillIDs, skill.ID)
	}

	for _, skill := range c.file.Skills {
		if err := c.indexSkill(skill); err != nil {
			return nil, err
		}
	}

	for _, role := range c.file.Roles {
		if _, dup := c.roles[role.ID]; dup {
			return nil, c.fail("duplicate roleId %q", role.ID)
		}
		for skillID, weight := range role.RequiredSkills {
			if _, ok := c.skills[skillID]; !ok {
				return nil, c.fail("role %q requires unknown skill %q", role.ID, skillID)
			}
			if weight < 0 || weight > 1 {
				return nil, c.fail("role %q has weight %v for skill %q outside [0, 1]", role.ID, weight, skillID)
			}
		}
		c.roles[role.ID] = role
		c.roleIDs = append(c.roleIDs, role.ID)
	}

	for _, entry := range c.file.Resources {
		if _, ok := c.skills[entry.SkillID]; !ok {
			return nil, c.fail("resources reference unknown skill %q", entry.SkillID)
		}
		c.resources[entry.SkillID] = append(c.resources[entry.SkillID], entry.Resources...)
	}

	sort.Slice(c.skillIDs, func(i, j int) bool { return c.skillIDs[i] < c.skillIDs[j] })
	sort.Slice(c.roleIDs, func(i, j int) bool { return c.roleIDs[i] < c.roleIDs[j] })

	return c, nil
}

func (c *Catalog) indexSkill(skill types.SkillDefinition) error {
	for _, prereq := range skill.Prerequisites {
		if prereq == skill.ID {
			return c.fail("skill %q lists itself as a prerequisite", skill.ID)
		}
		if _, ok := c.skills[prereq]; !ok {
			return c.fail("skill %q has unknown prerequisite %q", skill.ID, prereq)
		}
	}

	for _, alias := range skill.Aliases {
		key := normalize.Clean(alias)
		if key == "" {
			return c.fail("skill %q has an alias without letters or digits", skill.ID)
		}
		if owner, ok := c.aliases[key]; ok && owner != skill.ID {
			return c.fail("alias %q maps to both %q and %q", alias, owner, skill.ID)
		}
		c.aliases[key] = skill.ID
	}

	terms := append([]string{string(skill.ID), skill.DisplayName}, skill.Aliases...)
	for _, term := range terms {
		key := normalize.Clean(term)
		if key == "" {
			continue
		}
		if owner, ok := c.vocabulary[key]; ok && owner != skill.ID {
			return c.fail("term %q names both %q and %q", term, owner, skill.ID)
		}
		c.vocabulary[key] = skill.ID
	}
	return nil
}

func (c *Catalog) fail(format string, args ...interface{}) error {
	return &LoadError{Path: c.source, Reason: fmt.Sprintf(format, args...)}
}

// Source returns the path or name the catalog was loaded from
func (c *Catalog) Source() string {
	return c.source
}

// Version returns the catalog's declared version string
func (c *Catalog) Version() string {
	return c.file.Version
}

// Skill returns the definition of id
func (c *Catalog) Skill(id types.SkillID) (types.SkillDefinition, bool) {
	skill, ok := c.skills[id]
	if !ok {
		return types.SkillDefinition{}, false
	}
	return copySkill(skill), true
}

// Role returns the definition of id
func (c *Catalog) Role(id types.RoleID) (types.RoleDefinition, bool) {
	role, ok := c.roles[id]
	if !ok {
		return types.RoleDefinition{}, false
	}
	return copyRole(role), true
}

// Roles returns every role sorted by RoleID
func (c *Catalog) Roles() []types.RoleDefinition {
	out := make([]types.RoleDefinition, 0, len(c.roleIDs))
	for _, id := range c.roleIDs {
		out = append(out, copyRole(c.roles[id]))
	}
	return out
}

// SkillIDs returns the skill vocabulary sorted ascending
func (c *Catalog) SkillIDs() []types.SkillID {
	out := make([]types.SkillID, len(c.skillIDs))
	copy(out, c.skillIDs)
	return out
}

// Vocabulary returns every cleaned term (skill id, display name, alias) that names a skill
func (c *Catalog) Vocabulary() map[string]types.SkillID {
	out := make(map[string]types.SkillID, len(c.vocabulary))
	for k, v := range c.vocabulary {
		out[k] = v
	}
	return out
}

// Aliases returns the cleaned alias table declared by the catalog
func (c *Catalog) Aliases() map[string]types.SkillID {
	out := make(map[string]types.SkillID, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// Resources returns the learning resources for id in catalog order
func (c *Catalog) Resources(id types.SkillID) []types.Resource {
	src := c.resources[id]
	out := make([]types.Resource, len(src))
	copy(out, src)
	return out
}

// Prerequisites returns the declared prerequisites of id
func (c *Catalog) Prerequisites(id types.SkillID) []types.SkillID {
	skill, ok := c.skills[id]
	if !ok {
		return nil
	}
	out := make([]types.SkillID, len(skill.Prerequisites))
	copy(out, skill.Prerequisites)
	return out
}

// File returns a copy of the catalog in its serialized shape
func (c *Catalog) File() types.CatalogFile {
	return copyFile(c.file)
}

func copyFile(f types.CatalogFile) types.CatalogFile {
	out := types.CatalogFile{Version: f.Version}
	if f.Skills != nil {
		out.Skills = make([]types.SkillDefinition, len(f.Skills))
		for i, s := range f.Skills {
			out.Skills[i] = copySkill(s)
		}
	}
	if f.Roles != nil {
		out.Roles = make([]types.RoleDefinition, len(f.Roles))
		for i, r := range f.Roles {
			out.Roles[i] = copyRole(r)
		}
	}
	if f.Resources != nil {
		out.Resources = make([]types.SkillResources, len(f.Resources))
		for i, r := range f.Resources {
			out.Resources[i] = types.SkillResources{SkillID: r.SkillID}
			if r.Resources != nil {
				out.Resources[i].Resources = append([]types.Resource{}, r.Resources...)
			}
		}
	}
	return out
}

func copySkill(s types.SkillDefinition) types.SkillDefinition {
	out := s
	if s.Aliases != nil {
		out.Aliases = append([]string{}, s.Aliases...)
	}
	if s.Prerequisites != nil {
		out.Prerequisites = append([]types.SkillID{}, s.Prerequisites...)
	}
	return out
}

func copyRole(r types.RoleDefinition) types.RoleDefinition {
	out := r
	if r.RequiredSkills != nil {
		out.RequiredSkills = make(map[types.SkillID]float64, len(r.RequiredSkills))
		for k, v := range r.RequiredSkills {
			out.RequiredSkills[k] = v
		}
	}
	return out
}
