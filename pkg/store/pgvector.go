package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/arvandy/skillpipe/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type ChunkStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// ChunkStore persists extraction chunks with their embeddings in Postgres
// using the pgvector extension, so extracted documents are queryable by
// cosine similarity.
type ChunkStore struct {
	config ChunkStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config ChunkStoreConfig) (*ChunkStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cs := &ChunkStore{
		config: config,
		pool:   pool,
	}

	if err := cs.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return cs, nil
}

func (cs *ChunkStore) initialize() error {
	ctx := context.Background()

	_, err := cs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT,
			embedding vector(%d)
		)`, cs.config.TableName, cs.config.VectorDim)

	_, err = cs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		cs.config.TableName, cs.config.TableName)

	_, err = cs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Store upserts chunks in one transaction. Chunk identity is source plus
// index, so re-extracting a document replaces its previous chunks.
func (cs *ChunkStore) Store(ctx context.Context, chunks []models.Chunk) error {
	tx, err := cs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source_id, chunk_index, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		cs.config.TableName)

	for _, chunk := range chunks {
		id := fmt.Sprintf("%s_%d", chunk.SourceID, chunk.Index)

		_, err = tx.Exec(ctx, stmt,
			id,
			chunk.SourceID,
			chunk.Index,
			sanitizeUTF8(chunk.Content),
			pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Query returns the chunks nearest to the given embedding by cosine
// distance.
func (cs *ChunkStore) Query(ctx context.Context, embedding []float32, limit int) ([]models.Chunk, error) {
	if limit == 0 {
		limit = 5
	}

	query := fmt.Sprintf(`
		SELECT source_id, chunk_index, content
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		cs.config.TableName)

	rows, err := cs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		if err := rows.Scan(&chunk.SourceID, &chunk.Index, &chunk.Content); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

func (cs *ChunkStore) Close() {
	if cs.pool != nil {
		cs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
