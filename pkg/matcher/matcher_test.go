package matcher_test

import (
	"context"
	"testing"

	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/llm"
	"github.com/arvandy/skillpipe/pkg/matcher"
	"github.com/arvandy/skillpipe/pkg/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// oneHotEmbedder assigns each distinct text its own basis vector, so cosine
// similarity is 1 for equal strings and 0 otherwise. It counts Embed calls to
// verify run-scoped memoization.
type oneHotEmbedder struct {
	dims  map[string]int
	calls int
}

func newOneHotEmbedder() *oneHotEmbedder {
	return &oneHotEmbedder{dims: make(map[string]int)}
}

func (e *oneHotEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++

	for _, t := range texts {
		if _, ok := e.dims[t]; !ok {
			e.dims[t] = len(e.dims)
		}
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, 64)
		vec[e.dims[t]] = 1
		out[i] = vec
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Thresholds: config.Thresholds{Strong: 0.7, Nice: 0.6, Weak: 0.5},
		Similarity: config.SimilarityWeights{Semantic: 0.7, Lexical: 0.3},
		Scoring:    config.ScoringWeights{RequiredSkill: 0.7, OptionalSkill: 0.3},
		Normalization: config.Normalization{
			Lowercase:         true,
			RemovePunctuation: true,
			StripWhitespace:   true,
			SplitAlternatives: true,
		},
	}
}

func TestMatch_EndToEnd(t *testing.T) {
	cfg := testConfig()
	norm := normalizer.New(cfg.Normalization, "", "", zap.NewNop())
	embedder := newOneHotEmbedder()
	m := matcher.New(cfg, norm, llm.NewCachedEmbedder(embedder), matcher.NewLevenshteinScorer())

	candidate := []string{"Python", "Django", "PostgreSQL", "Docker", "AWS", "TensorFlow"}
	required := []string{"Python", "Django or Flask", "SQL"}
	optional := []string{"AWS", "Docker", "React"}

	result, err := m.Match(context.Background(), candidate, required, optional)
	require.NoError(t, err)

	require.Len(t, result.Required, 3)
	require.Len(t, result.Optional, 3)

	// Exact matches score 1.0: semantic and lexical both maximal.
	python := result.Required[0]
	assert.Equal(t, "Python", python.Skill)
	assert.Equal(t, "Python", python.Match)
	assert.Equal(t, 1.0, python.Score)
	assert.Equal(t, models.CategoryStrong, python.Category)

	// "Django or Flask" splits into alternates; Django wins outright.
	django := result.Required[1]
	assert.Equal(t, "Django or Flask", django.Skill)
	assert.Equal(t, "Django", django.Match)
	assert.Equal(t, 1.0, django.Score)
	assert.Equal(t, models.CategoryStrong, django.Category)

	// "SQL" has no semantic neighbor under one-hot embeddings; the lexical
	// component alone picks PostgreSQL (edit similarity 0.3) but stays far
	// below the weak threshold.
	sql := result.Required[2]
	assert.Equal(t, "SQL", sql.Skill)
	assert.Equal(t, "PostgreSQL", sql.Match)
	assert.Equal(t, 0.09, sql.Score)
	assert.Equal(t, models.CategoryNone, sql.Category)
	assert.Equal(t, 0.0, sql.Components.Semantic)
	assert.Equal(t, 0.3, sql.Components.Lexical)

	assert.Equal(t, models.CategoryStrong, result.Optional[0].Category)
	assert.Equal(t, models.CategoryStrong, result.Optional[1].Category)
	assert.Equal(t, models.CategoryNone, result.Optional[2].Category)

	// Required mean: (1.0 + 1.0 + 0.09) / 3.
	assert.Equal(t, 0.6967, result.RequiredMatchScore)
	assert.InDelta(t, 0.7*result.RequiredMatchScore+0.3*result.OptionalMatchScore, result.Score, 0.001)

	assert.Equal(t, 0.7, result.RelativeWeights.Required)
	assert.Equal(t, 0.3, result.RelativeWeights.Optional)

	assert.Equal(t, 4, result.Summary.Combined.Strong)
	assert.Equal(t, 2, result.Summary.Combined.None)
	assert.False(t, result.Summary.NoInput)
}

func TestMatch_EmbedderCalledOncePerRun(t *testing.T) {
	cfg := testConfig()
	norm := normalizer.New(cfg.Normalization, "", "", zap.NewNop())
	embedder := newOneHotEmbedder()
	m := matcher.New(cfg, norm, llm.NewCachedEmbedder(embedder), matcher.NewLevenshteinScorer())

	_, err := m.Match(context.Background(),
		[]string{"Python", "Django", "Docker"},
		[]string{"Python", "Django or Flask"},
		[]string{"Docker"})
	require.NoError(t, err)

	// Every distinct text goes to the model in a single warm-up batch; the
	// pairwise scoring loop is served entirely from the run cache.
	assert.Equal(t, 1, embedder.calls)
	// python, django, flask, docker
	assert.Len(t, embedder.dims, 4)
}

func TestMatch_TieBreaksOnFirstCandidate(t *testing.T) {
	cfg := testConfig()
	norm := normalizer.New(cfg.Normalization, "", "", zap.NewNop())

	// Duplicate candidate entries normalize to the same text, so they score
	// identically; the first occurrence must win.
	embedder := newOneHotEmbedder()
	m := matcher.New(cfg, norm, llm.NewCachedEmbedder(embedder), matcher.NewLevenshteinScorer())

	result, err := m.Match(context.Background(),
		[]string{"python", "Python"},
		[]string{"Python"},
		nil)
	require.NoError(t, err)

	require.Len(t, result.Required, 1)
	assert.Equal(t, "python", result.Required[0].Match)
}

func TestMatch_RawStringsPreserved(t *testing.T) {
	cfg := testConfig()
	norm := normalizer.New(cfg.Normalization, "", "", zap.NewNop())
	embedder := newOneHotEmbedder()
	m := matcher.New(cfg, norm, llm.NewCachedEmbedder(embedder), matcher.NewLevenshteinScorer())

	result, err := m.Match(context.Background(),
		[]string{"  C++  "},
		[]string{"C++"},
		nil)
	require.NoError(t, err)

	require.Len(t, result.Required, 1)
	assert.Equal(t, "C++", result.Required[0].Skill)
	assert.Equal(t, "  C++  ", result.Required[0].Match)
	assert.Equal(t, 1.0, result.Required[0].Score)
}
