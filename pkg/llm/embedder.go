package llm

import (
	"context"
	"fmt"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/time/rate"
)

// EmbedderConfig configures the Ollama-backed embedding collaborator.
type EmbedderConfig struct {
	Model     string
	BaseURL   string // Ollama server URL
	RateLimit float64 // requests per second, 0 = unlimited
}

// OllamaEmbedder produces embedding vectors through a local or remote Ollama
// server. Calls are blocking and never retried; a failure propagates as a
// collaborator error for the run.
type OllamaEmbedder struct {
	config  EmbedderConfig
	llm     *ollama.LLM
	limiter *rate.Limiter
}

func NewEmbedderWithConfig(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	e := &OllamaEmbedder{
		config: config,
		llm:    emb,
	}
	if config.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return e, nil
}

// Embed returns one vector per input text, in input order.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	embeddings, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, &errs.CollaboratorError{Collaborator: "embedding", Err: err}
	}

	if len(embeddings) != len(texts) {
		return nil, &errs.CollaboratorError{
			Collaborator: "embedding",
			Err:          fmt.Errorf("got %d vectors for %d texts", len(embeddings), len(texts)),
		}
	}

	return embeddings, nil
}
