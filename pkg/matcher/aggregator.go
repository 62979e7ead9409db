package matcher

import (
	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/pkg/config"
)

// Aggregator folds per-skill matches into the overall result. The
// required/optional scoring weights are normalized to sum to 1, so a config
// of 7/3 behaves the same as 0.7/0.3.
type Aggregator struct {
	weights config.ScoringWeights
}

func NewAggregator(weights config.ScoringWeights) *Aggregator {
	return &Aggregator{weights: weights}
}

// Aggregate computes the mean blended score per list (0 when empty), the
// weighted overall score, and category tallies. Two empty lists produce a
// zero score flagged as no-input, not an error.
func (a *Aggregator) Aggregate(required, optional []models.SkillMatch) models.MatchResult {
	relative := a.relativeWeights()

	requiredScore := meanScore(required)
	optionalScore := meanScore(optional)
	overall := relative.Required*requiredScore + relative.Optional*optionalScore

	summary := models.Summary{
		NoInput: len(required) == 0 && len(optional) == 0,
	}
	for _, m := range required {
		summary.Required.Add(m.Category)
		summary.Combined.Add(m.Category)
	}
	for _, m := range optional {
		summary.Optional.Add(m.Category)
		summary.Combined.Add(m.Category)
	}

	return models.MatchResult{
		Score:              round4(overall),
		RequiredMatchScore: round4(requiredScore),
		OptionalMatchScore: round4(optionalScore),
		Required:           required,
		Optional:           optional,
		Summary:            summary,
		RelativeWeights: models.RelativeWeights{
			Required: round4(relative.Required),
			Optional: round4(relative.Optional),
		},
	}
}

func (a *Aggregator) relativeWeights() models.RelativeWeights {
	total := a.weights.RequiredSkill + a.weights.OptionalSkill
	if total == 0 {
		return models.RelativeWeights{}
	}
	return models.RelativeWeights{
		Required: a.weights.RequiredSkill / total,
		Optional: a.weights.OptionalSkill / total,
	}
}

func meanScore(matches []models.SkillMatch) float64 {
	if len(matches) == 0 {
		return 0
	}

	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
