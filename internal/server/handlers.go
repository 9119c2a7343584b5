package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-recommender/internal/recommend"
	"github.com/jonathan/career-recommender/internal/types"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RecommendRequest is the body of POST /recommendations
type RecommendRequest struct {
	Skills []string `json:"skills" validate:"required,max=200,dive,max=200"`
}

// RoadmapRequest is the body of POST /roadmaps
type RoadmapRequest struct {
	Skills []string `json:"skills" validate:"max=200,dive,max=200"`
	RoleID string   `json:"role_id" validate:"required"`
}

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

// RoleSummary is one entry of GET /roles
type RoleSummary struct {
	RoleID     types.RoleID `json:"role_id"`
	Name       string       `json:"name"`
	SkillCount int          `json:"skill_count"`
}

// decodeRequest reads a JSON body into dst and validates it
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return &ErrValidation{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

// fail writes err with the status HTTPStatus assigns to it
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// handleRecommend ranks catalog roles for a list of raw skills
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.engine.RecommendRoles(r.Context(), req.Skills)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleRoadmap builds a learning plan toward one role
func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	var req RoadmapRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	plan, err := s.engine.PlanLearning(r.Context(), req.Skills, req.RoleID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, plan)
}

// handleAnalyze extracts skills from free text and ranks roles
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.engine.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleListRoles lists catalog roles sorted by ID
func (s *Server) handleListRoles(w http.ResponseWriter, _ *http.Request) {
	c := s.engine.Catalog()
	roles := c.Roles()
	summaries := make([]RoleSummary, 0, len(roles))
	for _, role := range roles {
		summaries = append(summaries, RoleSummary{
			RoleID:     role.ID,
			Name:       role.Name,
			SkillCount: len(role.RequiredSkills),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"version": c.Version(),
		"roles":   summaries,
	})
}

// handleGetRole returns one role definition
func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id := types.RoleID(r.PathValue("id"))
	role, ok := s.engine.Catalog().Role(id)
	if !ok {
		s.fail(w, r, &recommend.UnknownRoleError{RoleID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, role)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c := s.engine.Catalog()
	body := map[string]any{
		"status":          "ok",
		"catalog_version": c.Version(),
		"roles":           len(c.Roles()),
		"skills":          len(c.SkillIDs()),
	}
	if s.cache != nil {
		body["embedding_cache"] = s.cache.Stats()
	}
	s.jsonResponse(w, http.StatusOK, body)
}
