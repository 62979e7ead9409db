package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the loaded configuration. Scoring must never start with an
// invalid threshold ordering or chunk geometry, so callers treat a non-empty
// result as fatal.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Model.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "model_settings.model_name",
			Message: "embedding model name is required",
		})
	}

	if _, err := url.Parse(c.Model.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "model_settings.base_url",
			Message: "invalid provider base URL",
		})
	}

	if c.Model.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "model_settings.rate_limit",
			Message: "rate_limit must not be negative",
		})
	}

	for field, v := range map[string]float64{
		"skill_thresholds.strong": c.Thresholds.Strong,
		"skill_thresholds.nice":   c.Thresholds.Nice,
		"skill_thresholds.weak":   c.Thresholds.Weak,
	} {
		if v < 0 || v > 1 {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "threshold must be between 0 and 1",
			})
		}
	}

	if c.Thresholds.Strong < c.Thresholds.Nice || c.Thresholds.Nice < c.Thresholds.Weak {
		errors = append(errors, ValidationError{
			Field:   "skill_thresholds",
			Message: "thresholds must be ordered strong >= nice >= weak",
		})
	}

	if c.Similarity.Semantic < 0 || c.Similarity.Lexical < 0 {
		errors = append(errors, ValidationError{
			Field:   "similarity_weights",
			Message: "similarity weights must not be negative",
		})
	}

	if c.Scoring.RequiredSkill < 0 || c.Scoring.OptionalSkill < 0 {
		errors = append(errors, ValidationError{
			Field:   "scoring_weights",
			Message: "scoring weights must not be negative",
		})
	} else if c.Scoring.RequiredSkill+c.Scoring.OptionalSkill == 0 {
		errors = append(errors, ValidationError{
			Field:   "scoring_weights",
			Message: "at least one scoring weight must be positive",
		})
	}

	if c.Chunking.Size < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunking.size",
			Message: "size must be positive",
		})
	}

	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		errors = append(errors, ValidationError{
			Field:   "chunking.overlap",
			Message: "overlap must be non-negative and less than size",
		})
	}

	if c.Chunking.Unit != "char" && c.Chunking.Unit != "word" {
		errors = append(errors, ValidationError{
			Field:   "chunking.unit",
			Message: fmt.Sprintf("unknown chunk unit %q, expected \"char\" or \"word\"", c.Chunking.Unit),
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	return errors
}
