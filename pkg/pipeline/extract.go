// Package pipeline holds the run drivers for both pipelines. A driver reads
// inputs, calls the processing components, and always leaves behind exactly
// one metadata file; the result file is only written when the run succeeds.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/internal/types"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/processor"
	"go.uber.org/zap"
)

// ExtractRunner drives pipeline A: PDF text extraction, cleanup, chunking,
// output writing and optional chunk persistence.
type ExtractRunner struct {
	cfg       *config.Config
	extractor types.TextExtractor
	processor *processor.Processor
	embedder  types.Embedder   // used only when a store is attached
	store     types.ChunkStore // optional
	log       *zap.Logger

	// OnChunk, when set, is called once per stored chunk.
	OnChunk func(index int)
}

// ExtractOptions are the per-run inputs. Empty output paths fall back to the
// conventional locations derived from the input file name.
type ExtractOptions struct {
	InputPath    string
	OutputPath   string
	MetadataPath string
}

// ExtractResult reports what a successful run produced.
type ExtractResult struct {
	Chunks       []string
	OutputFile   string
	MetadataFile string
}

func NewExtractRunner(cfg *config.Config, extractor types.TextExtractor, embedder types.Embedder, store types.ChunkStore, log *zap.Logger) (*ExtractRunner, error) {
	proc, err := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
		Unit:         cfg.Chunking.Unit,
	})
	if err != nil {
		return nil, err
	}

	return &ExtractRunner{
		cfg:       cfg,
		extractor: extractor,
		processor: proc,
		embedder:  embedder,
		store:     store,
		log:       log,
	}, nil
}

// Run executes one extraction. Input and collaborator failures still produce
// a failed metadata file; only a successful run writes the chunks file.
func (r *ExtractRunner) Run(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	started := time.Now()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join("data", "output", "extract", fmt.Sprintf("chunks_%s.json", stem(opts.InputPath)))
	}
	metadataPath := opts.MetadataPath
	if metadataPath == "" {
		metadataPath = filepath.Join("data", "metadata", "extract", fmt.Sprintf("metadata_%s.json", stem(opts.InputPath)))
	}

	chunks, runErr := r.extract(ctx, opts.InputPath, outputPath)

	details := newStageDetails(r.cfg, started, runErr)
	totalChunks := len(chunks)
	details.TotalChunks = &totalChunks
	details.OutputFile = outputPath

	metadata := Metadata{
		SourceIdentifiers: map[string]SourceRef{
			"document": {Type: "file_system", ID: opts.InputPath},
		},
		Timestamp:  timestamp(),
		Extraction: &details,
	}

	if err := writeJSON(metadataPath, metadata); err != nil {
		// The metadata file is the audit trail; losing it is worth surfacing
		// even when the run itself succeeded.
		r.log.Error("failed to write metadata file", zap.String("path", metadataPath), zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return nil, runErr
	}

	return &ExtractResult{
		Chunks:       chunks,
		OutputFile:   outputPath,
		MetadataFile: metadataPath,
	}, nil
}

func (r *ExtractRunner) extract(ctx context.Context, inputPath, outputPath string) ([]string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, &errs.InputError{Path: inputPath, Err: err}
	}

	raw, err := r.extractor.Extract(inputPath)
	if err != nil {
		return nil, err
	}

	cleaned := r.processor.CleanText(raw)
	chunks := r.processor.Chunk(cleaned)
	r.log.Info("document chunked",
		zap.String("source", inputPath),
		zap.Int("chunks", len(chunks)))

	if err := writeJSON(outputPath, chunks); err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.persist(ctx, inputPath, chunks); err != nil {
			return nil, err
		}
	}

	return chunks, nil
}

// persist embeds each chunk and stores it, so extraction output is
// immediately queryable by similarity.
func (r *ExtractRunner) persist(ctx context.Context, sourceID string, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := r.embedder.Embed(ctx, chunks)
	if err != nil {
		return err
	}

	stored := make([]models.Chunk, len(chunks))
	for i, content := range chunks {
		stored[i] = models.Chunk{
			SourceID:  sourceID,
			Index:     i,
			Content:   content,
			Embedding: vectors[i],
		}
		if r.OnChunk != nil {
			r.OnChunk(i)
		}
	}

	return r.store.Store(ctx, stored)
}
