package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/arvandy/skillpipe/internal/models"
	"github.com/arvandy/skillpipe/pkg/config"
	"github.com/arvandy/skillpipe/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(string) (string, error) {
	return f.text, f.err
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeStore struct {
	stored []models.Chunk
}

func (f *fakeStore) Store(_ context.Context, chunks []models.Chunk) error {
	f.stored = append(f.stored, chunks...)
	return nil
}

func (f *fakeStore) Query(context.Context, []float32, int) ([]models.Chunk, error) {
	return nil, nil
}

func (f *fakeStore) Close() {}

func extractConfig() *config.Config {
	cfg, _ := config.LoadConfig("")
	cfg.Chunking = config.Chunking{Size: 20, Overlap: 5, Unit: "char"}
	cfg.Model.APIKey = "super-secret-key"
	return cfg
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644))
	return path
}

func readMetadata(t *testing.T, path string) pipeline.Metadata {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var md pipeline.Metadata
	require.NoError(t, json.Unmarshal(data, &md))
	return md
}

func TestExtractRun_Success(t *testing.T) {
	dir := t.TempDir()
	input := touch(t, dir, "resume.pdf")
	outputPath := filepath.Join(dir, "out", "chunks.json")
	metadataPath := filepath.Join(dir, "meta", "metadata.json")

	runner, err := pipeline.NewExtractRunner(extractConfig(),
		&fakeExtractor{text: "some  resume text with   enough length to produce several chunks"},
		nil, nil, zap.NewNop())
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    input,
		OutputPath:   outputPath,
		MetadataPath: metadataPath,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	// The chunks file holds the same JSON array the runner returned.
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var written []string
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, result.Chunks, written)

	md := readMetadata(t, metadataPath)
	require.NotNil(t, md.Extraction)
	assert.Equal(t, pipeline.StatusSuccess, md.Extraction.Status)
	assert.Nil(t, md.Extraction.ErrorMessage)
	require.NotNil(t, md.Extraction.TotalChunks)
	assert.Equal(t, len(result.Chunks), *md.Extraction.TotalChunks)
	assert.Equal(t, input, md.SourceIdentifiers["document"].ID)

	// Timestamps are UTC ISO-8601.
	_, err = time.Parse(time.RFC3339, md.Timestamp)
	assert.NoError(t, err)
}

func TestExtractRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	metadataPath := filepath.Join(dir, "metadata.json")
	outputPath := filepath.Join(dir, "chunks.json")

	runner, err := pipeline.NewExtractRunner(extractConfig(), &fakeExtractor{}, nil, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    filepath.Join(dir, "nope.pdf"),
		OutputPath:   outputPath,
		MetadataPath: metadataPath,
	})

	var inputErr *errs.InputError
	require.ErrorAs(t, err, &inputErr)

	// Failed runs still leave an audit record, but no chunks file.
	md := readMetadata(t, metadataPath)
	require.NotNil(t, md.Extraction)
	assert.Equal(t, pipeline.StatusFailed, md.Extraction.Status)
	require.NotNil(t, md.Extraction.ErrorMessage)
	assert.Contains(t, *md.Extraction.ErrorMessage, "input error")

	assert.NoFileExists(t, outputPath)
}

func TestExtractRun_ExtractorFailure(t *testing.T) {
	dir := t.TempDir()
	input := touch(t, dir, "broken.pdf")
	metadataPath := filepath.Join(dir, "metadata.json")

	layoutErr := &errs.CollaboratorError{Collaborator: "layout", Err: errors.New("malformed xref table")}
	runner, err := pipeline.NewExtractRunner(extractConfig(), &fakeExtractor{err: layoutErr}, nil, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    input,
		OutputPath:   filepath.Join(dir, "chunks.json"),
		MetadataPath: metadataPath,
	})

	var collabErr *errs.CollaboratorError
	require.ErrorAs(t, err, &collabErr)
	assert.Equal(t, "layout", collabErr.Collaborator)

	md := readMetadata(t, metadataPath)
	assert.Equal(t, pipeline.StatusFailed, md.Extraction.Status)
}

func TestExtractRun_MetadataRedactsSecrets(t *testing.T) {
	dir := t.TempDir()
	input := touch(t, dir, "resume.pdf")
	metadataPath := filepath.Join(dir, "metadata.json")

	runner, err := pipeline.NewExtractRunner(extractConfig(), &fakeExtractor{text: "short text"}, nil, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    input,
		OutputPath:   filepath.Join(dir, "chunks.json"),
		MetadataPath: metadataPath,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(metadataPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-key")
	assert.Contains(t, string(raw), config.RedactedMask)
}

func TestExtractRun_PersistsChunks(t *testing.T) {
	dir := t.TempDir()
	input := touch(t, dir, "resume.pdf")
	store := &fakeStore{}

	runner, err := pipeline.NewExtractRunner(extractConfig(),
		&fakeExtractor{text: "text long enough to make more than one chunk here"},
		fakeEmbedder{}, store, zap.NewNop())
	require.NoError(t, err)

	var seen []int
	runner.OnChunk = func(i int) { seen = append(seen, i) }

	result, err := runner.Run(context.Background(), pipeline.ExtractOptions{
		InputPath:    input,
		OutputPath:   filepath.Join(dir, "chunks.json"),
		MetadataPath: filepath.Join(dir, "metadata.json"),
	})
	require.NoError(t, err)

	require.Len(t, store.stored, len(result.Chunks))
	assert.Len(t, seen, len(result.Chunks))
	for i, chunk := range store.stored {
		assert.Equal(t, input, chunk.SourceID)
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, result.Chunks[i], chunk.Content)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestNewExtractRunner_BadChunkGeometry(t *testing.T) {
	cfg := extractConfig()
	cfg.Chunking.Overlap = cfg.Chunking.Size

	_, err := pipeline.NewExtractRunner(cfg, &fakeExtractor{}, nil, nil, zap.NewNop())

	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
