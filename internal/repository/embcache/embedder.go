// Package embcache memoizes embedding vectors in the key-value store, keyed by
// model and the SHA-256 of the text.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain"
)

type store interface {
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	SetMultiWithTTL(ctx context.Context, items []db.KVItem, ttl time.Duration) error
}

// Config holds cache settings. Model is part of the key so switching
// models never serves stale vectors.
type Config struct {
	KeyPrefix string
	Model     string
	TTL       time.Duration
}

// CachedEmbedder serves vectors from the cache and embeds only the misses.
// Cache read and write failures are logged and never fail an embed.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec // label "result": hit or miss; may be nil
	logger     *zap.Logger
}

// New wraps inner with a cache in s.
func New(
	inner domain.Embedder,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		prefix:     cfg.KeyPrefix + "emb_cache:" + cfg.Model + ":",
		ttl:        cfg.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed embeds a single text. A cache hit reports zero tokens.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := c.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed reads all keys in one round-trip and sends only the misses to
// the inner embedder, in one call. Vectors follow the order of texts.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return c.embed(ctx, texts)
}

func (c *CachedEmbedder) embed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.cacheKey(t)
	}

	out := domain.BatchEmbeddingResult{Embeddings: c.lookup(ctx, keys)}

	var missIdx []int
	var missTexts []string
	for i, vec := range out.Embeddings {
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	c.count("hit", len(texts)-len(missIdx))
	c.count("miss", len(missIdx))
	if len(missIdx) == 0 {
		return out, nil
	}

	fresh, err := domain.EmbedAll(ctx, c.inner, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed %d uncached texts: %w", len(missTexts), err)
	}
	out.PromptTokens, out.TotalTokens = fresh.PromptTokens, fresh.TotalTokens

	items := make([]db.KVItem, len(missIdx))
	for j, i := range missIdx {
		out.Embeddings[i] = fresh.Embeddings[j]
		items[j] = db.KVItem{Key: keys[i], Value: encodeVector(fresh.Embeddings[j])}
	}
	if err := c.store.SetMultiWithTTL(ctx, items, c.ttl); err != nil {
		c.logger.Warn("Failed to cache embeddings", zap.Int("count", len(items)), zap.Error(err))
	}
	return out, nil
}

// lookup returns one slot per key; misses and unreadable entries are nil.
func (c *CachedEmbedder) lookup(ctx context.Context, keys []string) [][]float32 {
	vecs := make([][]float32, len(keys))
	raw, err := c.store.GetMulti(ctx, keys)
	if err != nil {
		c.logger.Warn("Failed to read embedding cache", zap.Int("count", len(keys)), zap.Error(err))
		return vecs
	}
	for i := range keys {
		if i >= len(raw) || len(raw[i]) == 0 {
			continue
		}
		vec, err := decodeVector(raw[i])
		if err != nil {
			c.logger.Warn("Discarding corrupt cache entry", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		vecs[i] = vec
	}
	return vecs
}

// HealthCheck probes the inner embedder.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

func (c *CachedEmbedder) count(result string, n int) {
	if c.cacheTotal != nil && n > 0 {
		c.cacheTotal.WithLabelValues(result).Add(float64(n))
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("cached vector is %d bytes, not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
