package roadmap

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-recommender/internal/types"
)

// DependencyCycleError is returned when the prerequisites of the missing skills
// form a cycle. Skills lists every skill on a cycle, sorted.
type DependencyCycleError struct {
	Skills []types.SkillID
}

func (e *DependencyCycleError) Error() string {
	names := make([]string, len(e.Skills))
	for i, id := range e.Skills {
		names[i] = string(id)
	}
	return fmt.Sprintf("dependency cycle among skills: %s", strings.Join(names, ", "))
}

// UnknownSkillError is returned when a missing skill is not part of the catalog
type UnknownSkillError struct {
	SkillID types.SkillID
}

func (e *UnknownSkillError) Error() string {
	return fmt.Sprintf("unknown skill %q", e.SkillID)
}
