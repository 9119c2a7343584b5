package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/recommend"
	"github.com/jonathan/career-recommender/internal/roadmap"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *normalize.InvalidSkillInputError
		roleErr       *recommend.UnknownRoleError
		cycleErr      *roadmap.DependencyCycleError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &roleErr):
		return http.StatusNotFound
	case errors.As(err, &cycleErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
