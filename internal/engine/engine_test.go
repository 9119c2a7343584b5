package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/jonathan/career-recommender/internal/embedding"
	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/recommend"
	"github.com/jonathan/career-recommender/internal/roadmap"
	"github.com/jonathan/career-recommender/internal/types"
)

type countingProvider struct {
	inner embedding.Provider
	calls atomic.Int64
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	return p.inner.Embed(ctx, text)
}

func (p *countingProvider) Dimension() int { return p.inner.Dimension() }

func backendFile() types.CatalogFile {
	return types.CatalogFile{
		Version: "1",
		Skills: []types.SkillDefinition{
			{ID: "http", DisplayName: "HTTP", Aliases: []string{"rest"}},
			{ID: "sql", DisplayName: "SQL", Aliases: []string{"postgres"}, EstimatedHours: 30},
			{ID: "go", DisplayName: "Go", Aliases: []string{"golang"}},
			{ID: "docker", DisplayName: "Docker"},
		},
		Roles: []types.RoleDefinition{
			{ID: "backend-dev", Name: "Backend Developer", RequiredSkills: map[types.SkillID]float64{"http": 0.5, "sql": 0.5}},
			{ID: "go-dev", Name: "Go Developer", RequiredSkills: map[types.SkillID]float64{"go": 0.8, "docker": 0.4}},
		},
		Resources: []types.SkillResources{
			{SkillID: "sql", Resources: []types.Resource{
				{Title: "SQL Basics", URL: "https://example.com/sql", Type: "course", Level: "beginner", EstimatedHours: 10, Relevance: 0.9},
			}},
		},
	}
}

func newStore(t *testing.T, file types.CatalogFile) *catalog.Store {
	t.Helper()
	c, err := catalog.New(file, "test")
	require.NoError(t, err)
	return catalog.NewStore(c, "", nil)
}

func newEngine(t *testing.T, opts Options) (*Engine, *catalog.Store) {
	t.Helper()
	store := newStore(t, backendFile())
	e, err := New(context.Background(), store, nil, opts, nil)
	require.NoError(t, err)
	return e, store
}

func roleByID(t *testing.T, roles []types.RoleMatch, id types.RoleID) types.RoleMatch {
	t.Helper()
	for _, r := range roles {
		if r.RoleID == id {
			return r
		}
	}
	t.Fatalf("role %s missing", id)
	return types.RoleMatch{}
}

func TestRecommendRoles_BackendFullMatch(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	rec, err := e.RecommendRoles(context.Background(), []string{"HTTP", "postgres"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.RequestID)
	assert.Equal(t, []types.SkillID{"http", "sql"}, rec.Profile.MatchedSkills)
	assert.Equal(t, []string{"HTTP", "postgres"}, rec.Profile.RawSkills)

	backend := roleByID(t, rec.Roles, "backend-dev")
	assert.Equal(t, 1.0, backend.OverallScore)
	assert.Empty(t, backend.MissingSkills)
	assert.Equal(t, types.RoleID("backend-dev"), rec.Roles[0].RoleID)
}

func TestRecommendRoles_BackendHalfMatch(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	rec, err := e.RecommendRoles(context.Background(), []string{"HTTP"})
	require.NoError(t, err)

	backend := roleByID(t, rec.Roles, "backend-dev")
	assert.Equal(t, 0.5, backend.OverallScore)
	assert.Equal(t, []types.MissingSkill{{SkillID: "sql", Weight: 0.5}}, backend.MissingSkills)
}

func TestRecommendRoles_TopK(t *testing.T) {
	opts := DefaultOptions()
	opts.TopK = 1
	e, _ := newEngine(t, opts)

	rec, err := e.RecommendRoles(context.Background(), []string{"golang"})
	require.NoError(t, err)
	require.Len(t, rec.Roles, 1)
	assert.Equal(t, types.RoleID("go-dev"), rec.Roles[0].RoleID)
}

func TestRecommendRoles_InvalidInput(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	for _, raw := range [][]string{{"   "}, {"   ", "!!"}} {
		_, err := e.RecommendRoles(context.Background(), raw)
		var invalid *normalize.InvalidSkillInputError
		assert.True(t, errors.As(err, &invalid), "input %q", raw)
	}
}

func TestRecommendRoles_PartialInvalidInputIsReported(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	rec, err := e.RecommendRoles(context.Background(), []string{"HTTP", "   ", "quantum basketweaving"})
	require.NoError(t, err)

	assert.Equal(t, []types.SkillID{"http"}, rec.Profile.MatchedSkills)
	require.Len(t, rec.Profile.Errors, 1)
	assert.Equal(t, types.SkillErrorInvalidInput, rec.Profile.Errors[0].Kind)
	require.Len(t, rec.Profile.Unmatched, 1)
	assert.Equal(t, "quantum basketweaving", rec.Profile.Unmatched[0].Raw)
}

func TestRecommendRoles_ExactHitsSkipProvider(t *testing.T) {
	store := newStore(t, backendFile())
	provider := &countingProvider{inner: embedding.NewHashingProvider(0)}
	e, err := New(context.Background(), store, provider, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), provider.calls.Load())

	_, err = e.RecommendRoles(context.Background(), []string{"HTTP", "golang", "Postgres"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), provider.calls.Load())
}

func TestPlanLearning(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	plan, err := e.PlanLearning(context.Background(), []string{"HTTP"}, "backend-dev")
	require.NoError(t, err)

	assert.Equal(t, 0.5, plan.Gap.OverallScore)
	require.NotNil(t, plan.Roadmap)
	require.Len(t, plan.Roadmap.Steps, 1)

	step := plan.Roadmap.Steps[0]
	assert.Equal(t, types.SkillID("sql"), step.SkillID)
	assert.Equal(t, "SQL", step.DisplayName)
	assert.Equal(t, 30.0, step.EstimatedHours)
	require.Len(t, step.Resources, 1)
	assert.Equal(t, types.RoleID("backend-dev"), plan.Roadmap.TargetRoleID)
	assert.Equal(t, 30.0, plan.Roadmap.TotalHours)
}

func TestRecommendRoles_NoSkills(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	rec, err := e.RecommendRoles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rec.Profile.MatchedSkills)
	require.Len(t, rec.Roles, 2)
	for _, role := range rec.Roles {
		assert.Equal(t, 0.0, role.OverallScore)
	}
}

func TestPlanLearning_NoSkillsYieldsFullGap(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	for _, raw := range [][]string{nil, {}} {
		plan, err := e.PlanLearning(context.Background(), raw, "backend-dev")
		require.NoError(t, err)

		assert.Equal(t, 0.0, plan.Gap.OverallScore)
		assert.Empty(t, plan.Gap.MatchedSkills)
		assert.Equal(t, []types.MissingSkill{{SkillID: "http", Weight: 0.5}, {SkillID: "sql", Weight: 0.5}}, plan.Gap.MissingSkills)

		require.NotNil(t, plan.Roadmap)
		var order []types.SkillID
		for _, step := range plan.Roadmap.Steps {
			order = append(order, step.SkillID)
		}
		assert.Equal(t, []types.SkillID{"http", "sql"}, order)
	}
}

func TestPlanLearning_UnknownRole(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	_, err := e.PlanLearning(context.Background(), []string{"HTTP"}, "astronaut")
	var unknown *recommend.UnknownRoleError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, types.RoleID("astronaut"), unknown.RoleID)
}

func TestPlanLearning_DependencyCycle(t *testing.T) {
	file := backendFile()
	file.Skills[2].Prerequisites = []types.SkillID{"docker"}
	file.Skills[3].Prerequisites = []types.SkillID{"go"}

	store := newStore(t, file)
	e, err := New(context.Background(), store, nil, DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = e.PlanLearning(context.Background(), []string{"HTTP"}, "go-dev")
	var cycle *roadmap.DependencyCycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []types.SkillID{"docker", "go"}, cycle.Skills)
}

func TestAnalyzeText(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	rec, err := e.AnalyzeText(context.Background(), "Built REST services in Go with PostgreSQL")
	require.NoError(t, err)

	assert.Equal(t, []types.SkillID{"go", "http", "sql"}, rec.Profile.MatchedSkills)
	assert.Empty(t, rec.Profile.Unmatched)
	assert.Len(t, rec.Profile.RawSkills, len(rec.Profile.Matches))
	assert.Equal(t, 1.0, roleByID(t, rec.Roles, "backend-dev").OverallScore)
}

func TestAnalyzeText_Empty(t *testing.T) {
	e, _ := newEngine(t, DefaultOptions())

	_, err := e.AnalyzeText(context.Background(), "with the and of")
	var invalid *normalize.InvalidSkillInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestEngine_FollowsCatalogReload(t *testing.T) {
	e, store := newEngine(t, DefaultOptions())

	file := backendFile()
	file.Roles = append(file.Roles, types.RoleDefinition{
		ID: "dba", Name: "Database Administrator", RequiredSkills: map[types.SkillID]float64{"sql": 1},
	})
	next, err := catalog.New(file, "next")
	require.NoError(t, err)
	store.Swap(next)

	assert.Same(t, next, e.Catalog())

	rec, err := e.RecommendRoles(context.Background(), []string{"postgres"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, roleByID(t, rec.Roles, "dba").OverallScore)
}

func TestEngine_ConcurrentRequestsDuringReload(t *testing.T) {
	e, store := newEngine(t, DefaultOptions())
	next, err := catalog.New(backendFile(), "next")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rec, err := e.RecommendRoles(context.Background(), []string{"HTTP", "postgres"})
				if assert.NoError(t, err) {
					assert.Equal(t, 1.0, rec.Roles[0].OverallScore)
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		store.Swap(next)
	}
	wg.Wait()
}

func TestEngine_ProgressEvents(t *testing.T) {
	var steps []string
	opts := DefaultOptions()
	opts.OnProgress = func(ev ProgressEvent) {
		steps = append(steps, ev.Step)
		assert.NotEmpty(t, ev.RequestID)
	}
	e, _ := newEngine(t, opts)

	_, err := e.PlanLearning(context.Background(), []string{"HTTP"}, "backend-dev")
	require.NoError(t, err)
	assert.Equal(t, []string{StepNormalize, StepMatch, StepScore, StepRoadmap}, steps)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(context.Background(), nil, nil, DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestNew_NoProviderWithoutFallback(t *testing.T) {
	store := newStore(t, backendFile())
	opts := DefaultOptions()
	opts.Matching.LexicalFallback = false

	_, err := New(context.Background(), store, nil, opts, nil)
	assert.Error(t, err)
}
