package models

// Category is the terminal classification for a job-skill match.
type Category string

const (
	CategoryStrong Category = "strong"
	CategoryNice   Category = "nice"
	CategoryWeak   Category = "weak"
	CategoryNone   Category = "none"
)

// ScoreComponents breaks a blended score into its semantic and lexical parts.
type ScoreComponents struct {
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
}

// SkillMatch is the best candidate match found for a single job skill.
// Match is empty when no candidate skill scored above zero.
type SkillMatch struct {
	Skill      string          `json:"skill"`
	Match      string          `json:"match,omitempty"`
	Score      float64         `json:"sim"`
	Category   Category        `json:"category"`
	Components ScoreComponents `json:"components"`
}

// CategoryCounts tallies matches per category.
type CategoryCounts struct {
	Strong int `json:"strong"`
	Nice   int `json:"nice"`
	Weak   int `json:"weak"`
	None   int `json:"none"`
}

// Add tallies a single category.
func (c *CategoryCounts) Add(cat Category) {
	switch cat {
	case CategoryStrong:
		c.Strong++
	case CategoryNice:
		c.Nice++
	case CategoryWeak:
		c.Weak++
	default:
		c.None++
	}
}

// Total returns the number of tallied matches.
func (c CategoryCounts) Total() int {
	return c.Strong + c.Nice + c.Weak + c.None
}

// Summary aggregates category counts across both skill lists. NoInput marks
// runs where both lists were empty, to distinguish "nothing to match" from
// "nothing matched".
type Summary struct {
	Combined CategoryCounts `json:"combined"`
	Required CategoryCounts `json:"required"`
	Optional CategoryCounts `json:"optional"`
	NoInput  bool           `json:"no_input,omitempty"`
}

// RelativeWeights are the required/optional scoring weights normalized to
// sum to 1.
type RelativeWeights struct {
	Required float64 `json:"required"`
	Optional float64 `json:"optional"`
}

// MatchResult is the full output of a skill-matching run.
type MatchResult struct {
	Score              float64         `json:"score"`
	RequiredMatchScore float64         `json:"required_match_score"`
	OptionalMatchScore float64         `json:"optional_match_score"`
	Required           []SkillMatch    `json:"required"`
	Optional           []SkillMatch    `json:"optional"`
	Summary            Summary         `json:"summary"`
	RelativeWeights    RelativeWeights `json:"relative_skill_weights"`
}

// Chunk is one window of cleaned document text. Index preserves document
// order so the original text can be reconstructed.
type Chunk struct {
	SourceID  string
	Index     int
	Content   string
	Embedding []float32
}
