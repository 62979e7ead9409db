package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/matcher"
	"go.uber.org/zap"
)

// JobDescription is the job-side input file shape.
type JobDescription struct {
	RequiredSkills []string `json:"required_skills"`
	OptionalSkills []string `json:"optional_skills"`
}

// MatchRunner drives pipeline B: load inputs, run the matcher, write result
// and metadata files.
type MatchRunner struct {
	cfg     *config.Config
	matcher *matcher.Matcher
	log     *zap.Logger
}

type MatchOptions struct {
	CandidatePath string
	JobPath       string
	OutputPath    string
	MetadataPath  string
}

// MatchRunResult reports what a successful run produced.
type MatchRunResult struct {
	Result       *models.MatchResult
	OutputFile   string
	MetadataFile string
}

func NewMatchRunner(cfg *config.Config, m *matcher.Matcher, log *zap.Logger) *MatchRunner {
	return &MatchRunner{cfg: cfg, matcher: m, log: log}
}

// Run executes one matching run. Invalid input or a collaborator failure
// still writes failed metadata; the result file is written only on success.
func (r *MatchRunner) Run(ctx context.Context, opts MatchOptions) (*MatchRunResult, error) {
	started := time.Now()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join("data", "output", "skill_match", fmt.Sprintf("%s_matching_results.json", stem(opts.JobPath)))
	}
	metadataPath := opts.MetadataPath
	if metadataPath == "" {
		metadataPath = filepath.Join("data", "metadata", "skill_match",
			fmt.Sprintf("metadata_%s_vs_%s.json", stem(opts.CandidatePath), stem(opts.JobPath)))
	}

	candidates, job, result, runErr := r.match(ctx, opts, outputPath)

	details := newStageDetails(r.cfg, started, runErr)
	details.OutputFile = outputPath
	details.InputCounts = &InputCounts{
		CandidateSkills:   len(candidates),
		JobRequiredSkills: len(job.RequiredSkills),
		JobOptionalSkills: len(job.OptionalSkills),
	}

	metadata := Metadata{
		SourceIdentifiers: map[string]SourceRef{
			"candidate": {Type: "file_system", ID: opts.CandidatePath},
			"job":       {Type: "file_system", ID: opts.JobPath},
		},
		Timestamp: timestamp(),
		Matching:  &details,
	}

	if result != nil {
		metadata.ResultsSummary = map[string]any{
			"overall_score":        result.Score,
			"required_match_score": result.RequiredMatchScore,
			"optional_match_score": result.OptionalMatchScore,
			"summary_counts":       result.Summary,
		}
	}

	if err := writeJSON(metadataPath, metadata); err != nil {
		r.log.Error("failed to write metadata file", zap.String("path", metadataPath), zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return nil, runErr
	}

	return &MatchRunResult{
		Result:       result,
		OutputFile:   outputPath,
		MetadataFile: metadataPath,
	}, nil
}

func (r *MatchRunner) match(ctx context.Context, opts MatchOptions, outputPath string) ([]string, JobDescription, *models.MatchResult, error) {
	var job JobDescription

	candidates, err := loadCandidateSkills(opts.CandidatePath)
	if err != nil {
		return nil, job, nil, err
	}

	job, err = loadJobDescription(opts.JobPath)
	if err != nil {
		return candidates, job, nil, err
	}

	result, err := r.matcher.Match(ctx, candidates, job.RequiredSkills, job.OptionalSkills)
	if err != nil {
		return candidates, job, nil, err
	}

	r.log.Info("skill matching complete",
		zap.Float64("score", result.Score),
		zap.Int("required", len(result.Required)),
		zap.Int("optional", len(result.Optional)))

	if err := writeJSON(outputPath, result); err != nil {
		return candidates, job, nil, err
	}

	return candidates, job, result, nil
}

func loadCandidateSkills(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.InputError{Path: path, Err: err}
	}
	if len(data) == 0 {
		return nil, &errs.InputError{Path: path, Err: fmt.Errorf("file is empty")}
	}

	var skills []string
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, &errs.InputError{Path: path, Err: fmt.Errorf("expected a JSON array of strings: %w", err)}
	}

	return skills, nil
}

func loadJobDescription(path string) (JobDescription, error) {
	var job JobDescription

	data, err := os.ReadFile(path)
	if err != nil {
		return job, &errs.InputError{Path: path, Err: err}
	}
	if len(data) == 0 {
		return job, &errs.InputError{Path: path, Err: fmt.Errorf("file is empty")}
	}

	// required_skills must be present, not merely empty: a job description
	// without the key is malformed input.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return job, &errs.InputError{Path: path, Err: fmt.Errorf("expected a JSON object: %w", err)}
	}
	if _, ok := raw["required_skills"]; !ok {
		return job, &errs.InputError{Path: path, Err: fmt.Errorf("missing required_skills key")}
	}

	if err := json.Unmarshal(data, &job); err != nil {
		return job, &errs.InputError{Path: path, Err: err}
	}

	return job, nil
}
