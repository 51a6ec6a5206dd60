package semdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/semdex/internal/domain"
)

// Embedder turns one text into a vector. It must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is optionally implemented by an Embedder. When present,
// AddDocuments embeds all accepted contents in one call; otherwise Embed is
// called once per document.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds one vector per input text, in input order.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

var errNoEmbedder = errors.New("semdex: embedder not configured (use WithEmbedder)")

// adaptEmbedder exposes e as a domain.Embedder. The result implements
// domain.BatchEmbedder only when e implements BatchEmbedder.
func adaptEmbedder(e Embedder) domain.Embedder {
	single := sdkEmbedder{inner: e}
	if b, ok := e.(BatchEmbedder); ok {
		return sdkBatchEmbedder{sdkEmbedder: single, batch: b}
	}
	return single
}

type sdkEmbedder struct {
	inner Embedder
}

func (a sdkEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if a.inner == nil {
		return domain.EmbeddingResult{}, errNoEmbedder
	}
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult(r), nil
}

type sdkBatchEmbedder struct {
	sdkEmbedder
	batch BatchEmbedder
}

func (a sdkBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult(r), nil
}
