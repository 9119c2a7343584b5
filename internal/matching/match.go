package matching

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-recommender/internal/embedding"
	"github.com/jonathan/career-recommender/internal/normalize"
	"github.com/jonathan/career-recommender/internal/types"
)

type outcome struct {
	match     *types.SkillMatch
	unmatched *types.UnmatchedSkill
	err       *types.SkillError
}

// MatchSkills resolves each normalized skill to at most one catalog skill.
// Exact and alias hits never call the embedding provider. Provider failures are
// recorded per skill and the skill is reported unmatched; the call still completes.
func (idx *Index) MatchSkills(ctx context.Context, skills []normalize.Normalized) *types.UserSkillProfile {
	raw := make([]string, len(skills))
	for i, s := range skills {
		raw[i] = s.Raw
	}
	profile := types.NewUserSkillProfile(raw)

	outcomes := make([]outcome, len(skills))
	var g errgroup.Group
	g.SetLimit(idx.opts.Concurrency)
	for i, skill := range skills {
		if m, ok := idx.lookup(skill); ok {
			outcomes[i] = outcome{match: &m}
			continue
		}
		g.Go(func() error {
			outcomes[i] = idx.similar(ctx, skill)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch {
		case o.match != nil:
			profile.Matches = append(profile.Matches, *o.match)
			if prev, ok := profile.Confidence[o.match.SkillID]; !ok || o.match.Confidence > prev {
				profile.Confidence[o.match.SkillID] = o.match.Confidence
			}
		case o.unmatched != nil:
			profile.Unmatched = append(profile.Unmatched, *o.unmatched)
		}
		if o.err != nil {
			profile.Errors = append(profile.Errors, *o.err)
		}
	}

	for id := range profile.Confidence {
		profile.MatchedSkills = append(profile.MatchedSkills, id)
	}
	sort.Slice(profile.MatchedSkills, func(i, j int) bool {
		return profile.MatchedSkills[i] < profile.MatchedSkills[j]
	})

	idx.opts.Log.Debug("matched skills", "input", len(skills),
		"matched", len(profile.MatchedSkills), "unmatched", len(profile.Unmatched),
		"errors", len(profile.Errors), "lexical", idx.Lexical())
	return profile
}

// lookup resolves skill through the catalog vocabulary. The alias-resolved text
// is tried first, then the cleaned raw text, so that a default alias never hides
// a catalog term.
func (idx *Index) lookup(skill normalize.Normalized) (types.SkillMatch, bool) {
	for _, key := range []string{skill.Text, normalize.Clean(skill.Raw)} {
		id, ok := idx.exact[key]
		if !ok {
			continue
		}
		method := types.MatchMethodExact
		if _, isAlias := idx.aliases[key]; isAlias || (skill.Aliased && key == skill.Text) {
			method = types.MatchMethodAlias
		}
		return types.SkillMatch{
			Raw:        skill.Raw,
			Normalized: skill.Text,
			SkillID:    id,
			Confidence: 1.0,
			Method:     method,
		}, true
	}
	return types.SkillMatch{}, false
}

func (idx *Index) similar(ctx context.Context, skill normalize.Normalized) outcome {
	if idx.Lexical() {
		best, score := idx.bestLexical(skill.Text)
		return idx.decide(skill, best, score, idx.opts.LexicalThreshold, types.MatchMethodLexical)
	}

	vec, err := idx.provider.Embed(ctx, skill.Text)
	if err != nil {
		var perr *embedding.ProviderError
		if !errors.As(err, &perr) {
			err = &embedding.ProviderError{Text: skill.Text, Cause: err}
		}
		idx.opts.Log.Warn("embedding failed, skill left unmatched", "skill", skill.Text, "error", err)
		return outcome{
			unmatched: &types.UnmatchedSkill{Raw: skill.Raw, Normalized: skill.Text},
			err: &types.SkillError{
				Raw:     skill.Raw,
				Kind:    types.SkillErrorEmbeddingProvider,
				Message: err.Error(),
			},
		}
	}

	best, score := idx.bestCosine(vec)
	return idx.decide(skill, best, score, idx.opts.Threshold, types.MatchMethodEmbedding)
}

func (idx *Index) decide(skill normalize.Normalized, best types.SkillID, score, threshold float64, method string) outcome {
	if best != "" && score >= threshold {
		return outcome{match: &types.SkillMatch{
			Raw:        skill.Raw,
			Normalized: skill.Text,
			SkillID:    best,
			Confidence: score,
			Method:     method,
		}}
	}
	return outcome{unmatched: &types.UnmatchedSkill{
		Raw:           skill.Raw,
		Normalized:    skill.Text,
		BestCandidate: best,
		BestScore:     score,
	}}
}

// bestCosine returns the most similar catalog skill. ids are sorted ascending and
// only a strictly greater score replaces the best, so ties go to the smaller id.
func (idx *Index) bestCosine(vec []float32) (types.SkillID, float64) {
	var best types.SkillID
	bestScore := 0.0
	for i, id := range idx.ids {
		score := embedding.Cosine(vec, idx.vectors[i])
		if best == "" || score > bestScore {
			best, bestScore = id, score
		}
	}
	return best, bestScore
}

func (idx *Index) bestLexical(text string) (types.SkillID, float64) {
	var best types.SkillID
	bestScore := 0.0
	for i, id := range idx.ids {
		score := 0.0
		for _, term := range idx.terms[i] {
			if r := similarityRatio(text, term); r > score {
				score = r
			}
		}
		if best == "" || score > bestScore {
			best, bestScore = id, score
		}
	}
	return best, bestScore
}
