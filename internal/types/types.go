package types

import (
	"context"

	"github.com/arvandy/skillpipe/internal/models"
)

// Embedder produces one embedding vector per input text. Implementations
// wrap an external model; they are substitutable so tests can run without a
// model server.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LexicalScorer reports string similarity as a ratio in [0,1].
type LexicalScorer interface {
	Ratio(a, b string) float64
}

// TextExtractor converts a source document (a PDF on disk) into raw text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// ChunkStore persists extraction chunks with their embeddings.
type ChunkStore interface {
	Store(ctx context.Context, chunks []models.Chunk) error
	Query(ctx context.Context, embedding []float32, limit int) ([]models.Chunk, error)
	Close()
}
