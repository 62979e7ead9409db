// Package matcher implements the skill-matching pipeline: normalization,
// blended semantic/lexical scoring, threshold categorization and weighted
// aggregation. The embedding model and the fuzzy matcher are external
// collaborators behind the types.Embedder and types.LexicalScorer contracts.
package matcher

import (
	"context"

	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/internal/types"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/normalizer"
)

// Matcher wires the matching stages together for one run.
type Matcher struct {
	normalizer  *normalizer.TextNormalizer
	scorer      *Scorer
	categorizer *Categorizer
	aggregator  *Aggregator

	// OnSkill, when set, is called after each job skill is scored. The CLI
	// hangs a progress bar off it.
	OnSkill func(skill string)
}

func New(cfg *config.Config, norm *normalizer.TextNormalizer, embedder types.Embedder, lexical types.LexicalScorer) *Matcher {
	return &Matcher{
		normalizer:  norm,
		scorer:      NewScorer(embedder, lexical, cfg.Similarity),
		categorizer: NewCategorizer(cfg.Thresholds),
		aggregator:  NewAggregator(cfg.Scoring),
	}
}

// Match scores every required and optional job skill against the candidate
// skill list and aggregates the result. Skill and match strings in the
// output keep their raw input form; scoring happens on normalized text.
func (m *Matcher) Match(ctx context.Context, candidateSkills, requiredSkills, optionalSkills []string) (*models.MatchResult, error) {
	normCandidates := m.normalizer.NormalizeAll(candidateSkills)

	// One batch embedding call for every distinct text in the run.
	warm := append([]string{}, normCandidates...)
	jobAlternates := make(map[string][]string, len(requiredSkills)+len(optionalSkills))
	for _, skill := range append(append([]string{}, requiredSkills...), optionalSkills...) {
		alternates := m.normalizer.SplitAlternatives(m.normalizer.Normalize(skill))
		jobAlternates[skill] = alternates
		warm = append(warm, alternates...)
	}
	if err := m.scorer.Warm(ctx, warm); err != nil {
		return nil, err
	}

	required, err := m.matchList(ctx, requiredSkills, jobAlternates, candidateSkills, normCandidates)
	if err != nil {
		return nil, err
	}

	optional, err := m.matchList(ctx, optionalSkills, jobAlternates, candidateSkills, normCandidates)
	if err != nil {
		return nil, err
	}

	result := m.aggregator.Aggregate(required, optional)
	return &result, nil
}

func (m *Matcher) matchList(ctx context.Context, skills []string, alternates map[string][]string, rawCandidates, normCandidates []string) ([]models.SkillMatch, error) {
	matches := make([]models.SkillMatch, 0, len(skills))

	for _, skill := range skills {
		match, err := m.scorer.BestMatch(ctx, skill, alternates[skill], rawCandidates, normCandidates)
		if err != nil {
			return nil, err
		}

		match.Category = m.categorizer.Categorize(match.Score)
		matches = append(matches, match)

		if m.OnSkill != nil {
			m.OnSkill(skill)
		}
	}

	return matches, nil
}
