package matcher

import (
	"context"
	"math"

	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/internal/types"
	"github.com/arvandy/skillpipe/pkg/config"
)

// Scorer blends semantic and lexical similarity into one score per skill
// pair. The embedder is expected to be memoizing (llm.CachedEmbedder), since
// the same skill strings recur across the pairwise comparison.
type Scorer struct {
	embedder types.Embedder
	lexical  types.LexicalScorer
	weights  config.SimilarityWeights
}

func NewScorer(embedder types.Embedder, lexical types.LexicalScorer, weights config.SimilarityWeights) *Scorer {
	return &Scorer{
		embedder: embedder,
		lexical:  lexical,
		weights:  weights,
	}
}

// Warm pre-fetches embeddings for every distinct text in one batch call.
func (s *Scorer) Warm(ctx context.Context, texts []string) error {
	distinct := make([]string, 0, len(texts))
	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		if !seen[t] {
			distinct = append(distinct, t)
			seen[t] = true
		}
	}

	_, err := s.embedder.Embed(ctx, distinct)
	return err
}

// Score computes the semantic and lexical components for one pair. Both are
// in [0,1]; cosine similarity below zero is clamped.
func (s *Scorer) Score(ctx context.Context, jobSkill, candidateSkill string) (models.ScoreComponents, error) {
	vectors, err := s.embedder.Embed(ctx, []string{jobSkill, candidateSkill})
	if err != nil {
		return models.ScoreComponents{}, err
	}

	return models.ScoreComponents{
		Semantic: clamp01(cosineSimilarity(vectors[0], vectors[1])),
		Lexical:  s.lexical.Ratio(jobSkill, candidateSkill),
	}, nil
}

// Blend applies the configured similarity weights.
func (s *Scorer) Blend(c models.ScoreComponents) float64 {
	return s.weights.Semantic*c.Semantic + s.weights.Lexical*c.Lexical
}

// BestMatch scores every alternate of a job skill against every candidate
// and keeps the pair with the highest blended score. Ties are broken by
// first occurrence in the candidate list, so output is deterministic.
// Candidates are given in both raw and normalized form, index-aligned.
func (s *Scorer) BestMatch(ctx context.Context, rawSkill string, alternates []string, rawCandidates, normCandidates []string) (models.SkillMatch, error) {
	best := models.SkillMatch{Skill: rawSkill}

	for _, alt := range alternates {
		for i, cand := range normCandidates {
			components, err := s.Score(ctx, alt, cand)
			if err != nil {
				return models.SkillMatch{}, err
			}

			score := s.Blend(components)
			if score > best.Score {
				best.Score = score
				best.Match = rawCandidates[i]
				best.Components = components
			}
		}
	}

	best.Score = round4(best.Score)
	best.Components.Semantic = round4(best.Components.Semantic)
	best.Components.Lexical = round4(best.Components.Lexical)

	return best, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
