// Package embedding wraps the configured provider with request chunking and
// per-call logging. Provider metrics are recorded by the transport itself.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/domain"
)

// DefaultMaxBatch caps the number of texts per provider request.
const DefaultMaxBatch = 256

// Options configures an Embedder.
type Options struct {
	Provider string
	Model    string
	MaxBatch int // <= 0 means DefaultMaxBatch
	Logger   *zap.Logger
}

// Embedder splits large batches into provider-sized requests and logs each call.
type Embedder struct {
	inner    domain.Embedder
	maxBatch int
	logger   *zap.Logger
}

// New wraps inner.
func New(inner domain.Embedder, opts Options) *Embedder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBatch := opts.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &Embedder{
		inner:    inner,
		maxBatch: maxBatch,
		logger:   logger.With(zap.String("provider", opts.Provider), zap.String("model", opts.Model)),
	}
}

// Embed vectorizes a single text (a search query).
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.logger.Error("Embedding failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	e.logger.Debug("Embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// BatchEmbed vectorizes an ingest batch in chunks of at most MaxBatch texts.
// Vectors come back in input order; a failing chunk fails the whole batch.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	chunks := 0
	for offset := 0; offset < len(texts); offset += e.maxBatch {
		chunk := texts[offset:min(offset+e.maxBatch, len(texts))]
		res, err := domain.EmbedAll(ctx, e.inner, chunk)
		if err != nil {
			e.logger.Error("Batch embedding failed",
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		out.Append(res)
		chunks++
	}

	e.logger.Debug("Batch embedding completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("requests", chunks),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

// HealthCheck probes the inner provider; providers without a probe are healthy.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	hc, ok := e.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}
	return nil
}
