// Package openai talks to any OpenAI-compatible /embeddings endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/domain"
	"github.com/kailas-cloud/semdex/internal/metrics"
)

// Config configures NewEmbedder. Dimensions <= 0 leaves the model default;
// Provider only labels metrics.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Logger     *zap.Logger
}

// Embedder implements domain.Embedder and domain.BatchEmbedder.
type Embedder struct {
	client   *openai.Client
	base     openai.EmbeddingRequest
	provider string
	logger   *zap.Logger
}

func NewEmbedder(cfg *Config) *Embedder {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	base := openai.EmbeddingRequest{
		Model:          openai.EmbeddingModel(cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           cfg.User,
	}
	if cfg.Dimensions > 0 {
		base.Dimensions = cfg.Dimensions
	}

	return &Embedder{
		client:   openai.NewClientWithConfig(cc),
		base:     base,
		provider: cfg.Provider,
		logger:   log,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed sends all texts in one request. Vectors come back in input
// order whatever order the provider used.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.create(ctx, texts)
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Embedder) create(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	req := e.base
	req.Input = texts
	m := call{provider: e.provider, model: string(req.Model)}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	took := time.Since(start)
	if err != nil {
		m.fail("api_error")
		return domain.BatchEmbeddingResult{}, providerError(err)
	}

	vectors, reason, err := ordered(resp.Data, len(texts))
	if err != nil {
		m.fail(reason)
		return domain.BatchEmbeddingResult{}, err
	}
	m.succeed(took, len(texts), resp.Usage)

	e.logger.Debug("Embeddings created",
		zap.Int("inputs", len(texts)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", took),
	)
	return domain.BatchEmbeddingResult{
		Embeddings:   vectors,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// ordered places each item at its reported index. It fails unless every
// slot in [0,n) is filled exactly once; reason labels the error metric.
func ordered(data []openai.Embedding, n int) (out [][]float32, reason string, err error) {
	if len(data) != n {
		return nil, "count_mismatch", fmt.Errorf("got %d embeddings for %d inputs: %w",
			len(data), n, domain.ErrEmbeddingProviderError)
	}
	out = make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n || out[d.Index] != nil {
			return nil, "bad_index", fmt.Errorf("unexpected embedding index %d: %w",
				d.Index, domain.ErrEmbeddingProviderError)
		}
		out[d.Index] = d.Embedding
	}
	return out, "", nil
}

// call records one request against the embedding metrics.
type call struct {
	provider, model string
}

func (c call) fail(reason string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(c.provider, c.model, reason).Inc()
}

func (c call) succeed(took time.Duration, inputs int, u openai.Usage) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(c.provider, c.model).Observe(took.Seconds())
	metrics.EmbeddingBatchSize.WithLabelValues(c.provider, c.model).Observe(float64(inputs))
	if u.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(u.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(u.TotalTokens))
	}
}

// providerError turns a client failure into ErrEmbeddingProviderError,
// keeping the provider's own message when there is one.
func providerError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, msg, domain.ErrEmbeddingProviderError)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEmbeddingProviderError)
	}
	return fmt.Errorf("embedding request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
}

// extractDetail reads "detail" (vLLM, TEI) or "error.message" (OpenAI).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
