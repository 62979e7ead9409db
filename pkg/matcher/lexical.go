package matcher

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// LevenshteinScorer is the default lexical collaborator: normalized
// edit-distance similarity in [0,1].
type LevenshteinScorer struct {
	metric *metrics.Levenshtein
}

func NewLevenshteinScorer() *LevenshteinScorer {
	return &LevenshteinScorer{metric: metrics.NewLevenshtein()}
}

func (s *LevenshteinScorer) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return strutil.Similarity(a, b, s.metric)
}
