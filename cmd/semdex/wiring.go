package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/config"
	"github.com/kailas-cloud/semdex/internal/db"
	dbQdrant "github.com/kailas-cloud/semdex/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/semdex/internal/db/redis"
	"github.com/kailas-cloud/semdex/internal/domain"
	"github.com/kailas-cloud/semdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/semdex/internal/repository/document"
	"github.com/kailas-cloud/semdex/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/semdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/semdex/internal/usecase/embedding"
)

// connect opens the configured store, waits for it and assembles the gateway.
func connect(ctx context.Context, cfg *config.Config, readiness time.Duration, logger *zap.Logger) (*backend, error) {
	hnsw := documentrepo.HNSWConfig{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct}
	fields := filterFields(cfg.Index.Fields)

	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))

		var cache db.KVStore
		if !cfg.Cache.Disabled {
			cache = store
		}
		embedder := buildEmbedder(cfg, cache, logger)

		repo, err := documentrepo.New(store, embedder, documentrepo.Config{
			IndexName:  cfg.Index.Name,
			KeyPrefix:  cfg.Index.KeyPrefix,
			Dimensions: cfg.Embedding.Dimensions,
			HNSW:       hnsw,
			Filterable: fields,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("build document repository: %w", err)
		}
		return &backend{gateway: repo, embedder: embedder, pinger: store, close: store.Close}, nil

	case config.DriverQdrant:
		qc := cfg.Database.Qdrant
		store, err := dbQdrant.NewStore(dbQdrant.Config{
			Host:   qc.Host,
			Port:   qc.Port,
			APIKey: qc.APIKey,
			UseTLS: qc.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("create qdrant store: %w", err)
		}
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("qdrant not ready: %w", err)
		}
		logger.Info("Connected to qdrant", zap.String("host", qc.Host), zap.Int("port", qc.Port))

		embedder := buildEmbedder(cfg, nil, logger)
		repo := documentrepo.NewQdrant(store, embedder, qc.Collection, cfg.Embedding.Dimensions, hnsw, fields)
		return &backend{gateway: repo, embedder: embedder, pinger: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func filterFields(in []config.FieldConfig) []documentrepo.FilterField {
	out := make([]documentrepo.FilterField, len(in))
	for i, f := range in {
		kind := documentrepo.FieldTag
		if f.Type == config.FieldNumeric {
			kind = documentrepo.FieldNumeric
		}
		out[i] = documentrepo.FilterField{Name: f.Name, Kind: kind}
	}
	return out
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// A nil cache skips the caching layer.
func buildEmbedder(cfg *config.Config, cache db.KVStore, logger *zap.Logger) domain.Embedder {
	ec := cfg.Embedding

	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		User:       ec.User,
		Provider:   ec.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Config{
			KeyPrefix: cfg.Index.KeyPrefix,
			Model:     ec.Model,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
		zap.Bool("cached", cache != nil),
	)

	return embeddinguc.New(embedder, embeddinguc.Options{
		Provider: ec.Provider,
		Model:    ec.Model,
		MaxBatch: ec.MaxAPIBatch,
		Logger:   logger,
	})
}

// embeddingHealthChecker wraps domain.Embedder to implement health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
