package matcher

import (
	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/pkg/config"
)

// Categorizer labels a blended score with a match category. Thresholds are
// inclusive lower bounds, checked strongest first; config validation
// guarantees strong >= nice >= weak.
type Categorizer struct {
	thresholds config.Thresholds
}

func NewCategorizer(thresholds config.Thresholds) *Categorizer {
	return &Categorizer{thresholds: thresholds}
}

func (c *Categorizer) Categorize(score float64) models.Category {
	switch {
	case score >= c.thresholds.Strong:
		return models.CategoryStrong
	case score >= c.thresholds.Nice:
		return models.CategoryNice
	case score >= c.thresholds.Weak:
		return models.CategoryWeak
	default:
		return models.CategoryNone
	}
}
