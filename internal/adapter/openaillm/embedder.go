package openaillm

import (
	"context"
	"fmt"
	"net/http"

	"movie-rag/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = openai.SmallEmbedding3

// DefaultEmbeddingDims is the output dimensionality of DefaultEmbeddingModel.
const DefaultEmbeddingDims = 1536

// Embedder generates embeddings via the OpenAI embeddings API.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder constructs an embedder for the given model. A nil httpClient
// falls back to the library default.
func NewEmbedder(apiKey string, model openai.EmbeddingModel, httpClient *http.Client) *Embedder {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return NewEmbedderWithConfig(cfg, model)
}

// NewEmbedderWithConfig constructs an embedder from a prepared client config.
func NewEmbedderWithConfig(cfg openai.ClientConfig, model openai.EmbeddingModel) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Encode embeds texts in one request, preserving input order.
func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range for %d inputs", d.Index, len(texts))
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// Version returns the embedding model identifier.
func (e *Embedder) Version() string {
	return string(e.model)
}

var _ domain.VectorEncoder = (*Embedder)(nil)
