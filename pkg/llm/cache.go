package llm

import (
	"context"

	"github.com/arvandy/skillpipe/internal/types"
)

// CachedEmbedder memoizes embedding lookups by exact text. Skill matching is
// O(required x candidate) pairwise, so the same skill string recurs many
// times per run; each distinct string hits the model at most once.
//
// The cache is scoped to one run. Normalization config can differ between
// runs, so a process-wide cache would serve stale vectors.
type CachedEmbedder struct {
	inner types.Embedder
	cache map[string][]float32
}

func NewCachedEmbedder(inner types.Embedder) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

// Embed returns one vector per text, fetching only cache misses from the
// underlying collaborator in a single batch call.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var misses []string
	seen := make(map[string]bool)

	for _, t := range texts {
		if _, ok := c.cache[t]; !ok && !seen[t] {
			misses = append(misses, t)
			seen[t] = true
		}
	}

	if len(misses) > 0 {
		vectors, err := c.inner.Embed(ctx, misses)
		if err != nil {
			return nil, err
		}
		for i, t := range misses {
			c.cache[t] = vectors[i]
		}
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = c.cache[t]
	}
	return out, nil
}

// Size reports the number of distinct cached texts.
func (c *CachedEmbedder) Size() int {
	return len(c.cache)
}
