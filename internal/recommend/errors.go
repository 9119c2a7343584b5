package recommend

import (
	"fmt"

	"github.com/jonathan/career-recommender/internal/types"
)

// UnknownRoleError is returned when a target role is not part of the catalog
type UnknownRoleError struct {
	RoleID types.RoleID
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.RoleID)
}
