package main

import (
	"context"
	"fmt"

	"github.com/arvandy/skillpipe/internal/types"
	"github.com/arvandy/skillpipe/pkg/extractor"
	"github.com/arvandy/skillpipe/pkg/llm"
	"github.com/arvandy/skillpipe/pkg/pipeline"
	"github.com/arvandy/skillpipe/pkg/store"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and chunk text from a PDF document",
	Long: "Extracts the text layer from a PDF, cleans markdown artifacts, splits the " +
		"text into overlapping chunks and writes chunk and metadata JSON files.",
	RunE: runExtract,
}

var (
	extractInput    string
	extractOutput   string
	extractMetadata string
	extractStore    bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "input", "i", "", "path to input PDF file (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "path to output chunks JSON file")
	extractCmd.Flags().StringVarP(&extractMetadata, "metadata", "m", "", "path to output metadata JSON file")
	extractCmd.Flags().BoolVar(&extractStore, "store", false, "embed chunks and persist them to the configured database")

	if err := extractCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	var embedder types.Embedder
	var chunkStore types.ChunkStore

	if extractStore {
		if cfg.Database.URL == "" {
			return fmt.Errorf("--store requires database.url to be configured")
		}

		ollama, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
			Model:     cfg.Model.Name,
			BaseURL:   cfg.Model.BaseURL,
			RateLimit: cfg.Model.RateLimit,
		})
		if err != nil {
			return err
		}
		embedder = llm.NewCachedEmbedder(ollama)

		chunkStore, err = store.NewWithConfig(store.ChunkStoreConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
			VectorDim:  cfg.Database.VectorDim,
			BatchSize:  cfg.Database.BatchSize,
		})
		if err != nil {
			return err
		}
		defer chunkStore.Close()
	}

	runner, err := pipeline.NewExtractRunner(cfg, extractor.NewPDFExtractor(), embedder, chunkStore, log)
	if err != nil {
		return err
	}

	var storageBar *progressbar.ProgressBar
	if extractStore {
		storageBar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(color.BlueString("Storing chunks...")),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetWidth(20),
			progressbar.OptionEnableColorCodes(true),
		)
		runner.OnChunk = func(int) { storageBar.Add(1) }
	}

	result, err := runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    extractInput,
		OutputPath:   extractOutput,
		MetadataPath: extractMetadata,
	})
	if storageBar != nil {
		storageBar.Finish()
	}
	if err != nil {
		color.Red("Extraction failed: %v", err)
		return err
	}

	color.Green("✓ Extracted %d chunks", len(result.Chunks))
	fmt.Printf("Chunks saved to: %s\n", result.OutputFile)
	fmt.Printf("Metadata saved to: %s\n", result.MetadataFile)

	return nil
}
