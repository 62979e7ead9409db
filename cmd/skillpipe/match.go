package main

import (
	"context"
	"fmt"

	"github.com/arvandy/skillpipe/pkg/llm"
	"github.com/arvandy/skillpipe/pkg/matcher"
	"github.com/arvandy/skillpipe/pkg/normalizer"
	"github.com/arvandy/skillpipe/pkg/pipeline"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match candidate skills against a job description",
	Long: "Scores every required and optional job skill against the candidate skill list " +
		"using blended semantic and lexical similarity, and writes result and metadata JSON files.",
	RunE: runMatch,
}

var (
	matchCandidates string
	matchJob        string
	matchOutput     string
	matchMetadata   string
)

func init() {
	matchCmd.Flags().StringVar(&matchCandidates, "candidate-skills", "", "path to candidate skills JSON file (required)")
	matchCmd.Flags().StringVar(&matchJob, "job-description", "", "path to job description JSON file (required)")
	matchCmd.Flags().StringVarP(&matchOutput, "out", "o", "", "path to output results JSON file")
	matchCmd.Flags().StringVarP(&matchMetadata, "metadata", "m", "", "path to output metadata JSON file")

	for _, flag := range []string{"candidate-skills", "job-description"} {
		if err := matchCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(matchCmd)
}

func runMatch(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ollama, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.Model.Name,
		BaseURL:   cfg.Model.BaseURL,
		RateLimit: cfg.Model.RateLimit,
	})
	if err != nil {
		return err
	}

	norm := normalizer.New(cfg.Normalization, cfg.SynonymFile, cfg.AcronymFile, log)
	m := matcher.New(cfg, norm, llm.NewCachedEmbedder(ollama), matcher.NewLevenshteinScorer())

	scoringBar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.BlueString("Scoring skills...")),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
	)
	m.OnSkill = func(string) { scoringBar.Add(1) }

	runner := pipeline.NewMatchRunner(cfg, m, log)
	run, err := runner.Run(context.Background(), pipeline.MatchOptions{
		CandidatePath: matchCandidates,
		JobPath:       matchJob,
		OutputPath:    matchOutput,
		MetadataPath:  matchMetadata,
	})
	scoringBar.Finish()
	if err != nil {
		color.Red("Matching failed: %v", err)
		return err
	}

	result := run.Result
	color.Green("✓ Matching complete")
	fmt.Printf("Required skills - strong: %d, nice: %d, weak: %d, none: %d\n",
		result.Summary.Required.Strong, result.Summary.Required.Nice,
		result.Summary.Required.Weak, result.Summary.Required.None)
	fmt.Printf("Optional skills - strong: %d, nice: %d, weak: %d, none: %d\n",
		result.Summary.Optional.Strong, result.Summary.Optional.Nice,
		result.Summary.Optional.Weak, result.Summary.Optional.None)
	fmt.Printf("Overall skill match score: %.4f\n", result.Score)
	fmt.Printf("Results saved to: %s\n", run.OutputFile)
	fmt.Printf("Metadata saved to: %s\n", run.MetadataFile)

	return nil
}
