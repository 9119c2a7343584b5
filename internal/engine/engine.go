// Package engine provides the high-level orchestration of skill matching, role
// recommendation and learning-path planning.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/jonathan/career-recommender/internal/embedding"
	"github.com/jonathan/career-recommender/internal/logger"
	"github.com/jonathan/career-recommender/internal/matching"
	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/recommend"
	"github.com/jonathan/career-recommender/internal/roadmap"
	"github.com/jonathan/career-recommender/internal/types"
)

// Pipeline steps reported through ProgressEvent
const (
	StepNormalize = "normalize"
	StepMatch     = "match"
	StepScore     = "score"
	StepRoadmap   = "roadmap"
)

// DefaultTopK is the number of roles returned by RecommendRoles
const DefaultTopK = 5

// ProgressEvent represents a progress update during a request
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when request progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures an Engine
type Options struct {
	Matching matching.Options
	// TopK bounds the roles returned by RecommendRoles; <= 0 returns all roles
	TopK int
	// Roadmap holds the assembler settings; Profile and TargetRoleID are set per request
	Roadmap    roadmap.Options
	OnProgress ProgressCallback
}

// DefaultOptions returns options with the documented defaults
func DefaultOptions() Options {
	return Options{
		Matching: matching.Options{
			Threshold:        matching.DefaultThreshold,
			LexicalThreshold: matching.DefaultLexicalThreshold,
			LexicalFallback:  true,
		},
		TopK:    DefaultTopK,
		Roadmap: roadmap.DefaultOptions(),
	}
}

// snapshot ties one catalog version to the structures derived from it
type snapshot struct {
	catalog    *catalog.Catalog
	index      *matching.Index
	normalizer *normalize.Normalizer
}

// Engine runs requests against the current catalog snapshot. Each request reads
// the snapshot once, so a concurrent reload never mixes catalog versions.
type Engine struct {
	store    *catalog.Store
	provider embedding.Provider
	opts     Options
	log      *logger.Logger

	current atomic.Pointer[snapshot]
	mu      sync.Mutex
}

// New builds an engine over store. provider may be nil when lexical fallback is
// enabled. The index for the current catalog is built before New returns, and is
// rebuilt whenever the store swaps in a new catalog.
func New(ctx context.Context, store *catalog.Store, provider embedding.Provider, opts Options, log *logger.Logger) (*Engine, error) {
	if store == nil || store.Current() == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.Matching.Log == nil {
		opts.Matching.Log = log
	}

	e := &Engine{
		store:    store,
		provider: provider,
		opts:     opts,
		log:      log,
	}
	if err := e.Refresh(ctx); err != nil {
		return nil, err
	}

	store.OnChange(func(*catalog.Catalog) {
		if err := e.Refresh(context.Background()); err != nil {
			e.log.Warn("failed to rebuild index after catalog change", "error", err)
		}
	})
	return e, nil
}

// Refresh rebuilds the match index if the store's catalog changed
func (e *Engine) Refresh(ctx context.Context) error {
	_, err := e.rebuild(ctx, e.store.Current())
	return err
}

func (e *Engine) rebuild(ctx context.Context, c *catalog.Catalog) (*snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if snap := e.current.Load(); snap != nil && snap.catalog == c {
		return snap, nil
	}

	idx, err := matching.NewIndex(ctx, c, e.provider, e.opts.Matching)
	if err != nil {
		return nil, fmt.Errorf("failed to build match index: %w", err)
	}

	snap := &snapshot{
		catalog:    c,
		index:      idx,
		normalizer: normalize.NewFromCatalogAliases(c.Aliases()),
	}
	e.current.Store(snap)
	e.log.Info("match index ready", "catalog", c.Source(), "version", c.Version(),
		"skills", len(c.SkillIDs()), "lexical", idx.Lexical())
	return snap, nil
}

// snapshot returns the structures for the store's current catalog. If the index
// cannot be rebuilt the previous snapshot keeps serving.
func (e *Engine) snapshot(ctx context.Context) *snapshot {
	snap := e.current.Load()
	c := e.store.Current()
	if snap.catalog == c {
		return snap
	}

	rebuilt, err := e.rebuild(ctx, c)
	if err != nil {
		e.log.Warn("serving previous catalog snapshot", "error", err)
		return snap
	}
	return rebuilt
}

// Catalog returns the catalog the engine is currently serving
func (e *Engine) Catalog() *catalog.Catalog {
	return e.current.Load().catalog
}

func (e *Engine) emit(step, requestID, message string, content any) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(ProgressEvent{
			Step:      step,
			Message:   message,
			RequestID: requestID,
			Content:   content,
		})
	}
}

// RecommendRoles matches rawSkills against the catalog and ranks every role.
// Per-skill normalization and embedding failures are reported in the profile.
func (e *Engine) RecommendRoles(ctx context.Context, rawSkills []string) (*types.Recommendation, error) {
	snap := e.snapshot(ctx)
	requestID := uuid.NewString()

	profile, err := e.profile(ctx, snap, requestID, rawSkills)
	if err != nil {
		return nil, err
	}

	return e.rank(snap, requestID, profile), nil
}

// PlanLearning computes the gap to targetRoleID and sequences it into a roadmap
func (e *Engine) PlanLearning(ctx context.Context, rawSkills []string, targetRoleID string) (*types.LearningPlan, error) {
	snap := e.snapshot(ctx)
	requestID := uuid.NewString()

	profile, err := e.profile(ctx, snap, requestID, rawSkills)
	if err != nil {
		return nil, err
	}

	gap, err := recommend.ComputeGap(profile, types.RoleID(targetRoleID), snap.catalog)
	if err != nil {
		return nil, err
	}
	e.emit(StepScore, requestID, fmt.Sprintf("%s: %.0f%% of weighted requirements met, %d skills missing",
		gap.Name, gap.OverallScore*100, len(gap.MissingSkills)), gap)

	opts := e.opts.Roadmap
	opts.Profile = profile
	opts.TargetRoleID = gap.RoleID
	plan, err := roadmap.Build(gap.MissingSkills, snap.catalog, opts)
	if err != nil {
		return nil, err
	}
	e.emit(StepRoadmap, requestID, fmt.Sprintf("%d steps, %.1f hours", len(plan.Steps), plan.TotalHours), plan)

	e.log.Debug("planned learning", "request_id", requestID, "role", gap.RoleID,
		"steps", len(plan.Steps), "hours", plan.TotalHours)
	return &types.LearningPlan{
		RequestID: requestID,
		Profile:   profile,
		Gap:       gap,
		Roadmap:   plan,
	}, nil
}

// AnalyzeText extracts skill candidates from free text (such as resume text) and
// ranks roles using only the candidates that matched a catalog skill.
func (e *Engine) AnalyzeText(ctx context.Context, text string) (*types.Recommendation, error) {
	candidates := normalize.ExtractCandidates(text)
	if len(candidates) == 0 {
		return nil, &normalize.InvalidSkillInputError{Reason: "no skill candidates found in text"}
	}

	snap := e.snapshot(ctx)
	requestID := uuid.NewString()

	normalized, _ := snap.normalizer.NormalizeAll(candidates)
	matched := snap.index.MatchSkills(ctx, normalized)

	profile := types.NewUserSkillProfile(nil)
	profile.MatchedSkills = matched.MatchedSkills
	profile.Confidence = matched.Confidence
	profile.Matches = matched.Matches
	for _, m := range matched.Matches {
		profile.RawSkills = append(profile.RawSkills, m.Raw)
	}
	for _, se := range matched.Errors {
		if se.Kind == types.SkillErrorEmbeddingProvider {
			profile.Errors = append(profile.Errors, se)
		}
	}
	e.emit(StepMatch, requestID, fmt.Sprintf("%d candidates, %d skills recognized",
		len(candidates), len(profile.MatchedSkills)), profile)

	return e.rank(snap, requestID, profile), nil
}

func (e *Engine) profile(ctx context.Context, snap *snapshot, requestID string, rawSkills []string) (*types.UserSkillProfile, error) {
	if len(rawSkills) == 0 {
		profile := types.NewUserSkillProfile(nil)
		e.emit(StepMatch, requestID, "no skills given, starting from an empty profile", profile)
		return profile, nil
	}

	normalized, errs := snap.normalizer.NormalizeAll(rawSkills)
	if len(normalized) == 0 {
		return nil, &normalize.InvalidSkillInputError{Reason: "no valid skills provided"}
	}
	e.emit(StepNormalize, requestID, fmt.Sprintf("%d skills normalized, %d rejected", len(normalized), len(errs)), normalized)

	profile := snap.index.MatchSkills(ctx, normalized)
	profile.RawSkills = append([]string{}, rawSkills...)
	profile.Errors = append(errs, profile.Errors...)
	e.emit(StepMatch, requestID, fmt.Sprintf("%d matched, %d unmatched", len(profile.MatchedSkills), len(profile.Unmatched)), profile)

	return profile, nil
}

func (e *Engine) rank(snap *snapshot, requestID string, profile *types.UserSkillProfile) *types.Recommendation {
	roles := recommend.TopK(recommend.ScoreRoles(profile, snap.catalog), e.opts.TopK)
	e.emit(StepScore, requestID, fmt.Sprintf("%d roles ranked", len(roles)), roles)

	e.log.Debug("recommended roles", "request_id", requestID,
		"matched", len(profile.MatchedSkills), "roles", len(roles))
	return &types.Recommendation{
		RequestID: requestID,
		Profile:   profile,
		Roles:     roles,
	}
}
