package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arvandy/skillpipe/pkg/config"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// SourceRef identifies where an input came from, e.g. {file_system, path}.
type SourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// InputCounts records the matching input sizes for auditing.
type InputCounts struct {
	CandidateSkills   int `json:"total_candidate_skills"`
	JobRequiredSkills int `json:"total_job_required_skills"`
	JobOptionalSkills int `json:"total_job_optional_skills"`
}

// StageDetails is the per-stage audit block. ConfigUsed is always the
// redacted snapshot; ErrorMessage is null on success.
type StageDetails struct {
	Status                string        `json:"status"`
	ConfigUsed            config.Config `json:"config_used"`
	ProcessingTimeSeconds float64       `json:"processing_time_seconds"`
	ErrorMessage          *string       `json:"error_message"`

	TotalChunks *int         `json:"total_chunks,omitempty"`
	OutputFile  string       `json:"output_file,omitempty"`
	InputCounts *InputCounts `json:"input_counts,omitempty"`
}

// Metadata is the write-once audit record produced by every run, success or
// failure. Exactly one of Extraction/Matching is set.
type Metadata struct {
	SourceIdentifiers map[string]SourceRef `json:"source_identifiers"`
	Timestamp         string               `json:"timestamp"`
	Extraction        *StageDetails        `json:"extraction_details,omitempty"`
	Matching          *StageDetails        `json:"matching_details,omitempty"`
	ResultsSummary    any                  `json:"results_summary,omitempty"`
}

func newStageDetails(cfg *config.Config, started time.Time, runErr error) StageDetails {
	details := StageDetails{
		Status:                StatusSuccess,
		ConfigUsed:            cfg.Redacted(),
		ProcessingTimeSeconds: round2(time.Since(started).Seconds()),
	}

	if runErr != nil {
		details.Status = StatusFailed
		msg := runErr.Error()
		details.ErrorMessage = &msg
	}

	return details
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// writeJSON persists a result or metadata document, creating parent
// directories as needed.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
