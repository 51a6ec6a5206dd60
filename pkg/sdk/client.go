package semdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbQdrant "github.com/kailas-cloud/semdex/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/semdex/internal/db/redis"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
	documentrepo "github.com/kailas-cloud/semdex/internal/repository/document"
	documentuc "github.com/kailas-cloud/semdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/semdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/semdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 1536
	defaultIndexName        = "semdex_idx"
	defaultKeyPrefix        = "semdex:"
	defaultCollection       = "semdex"
	defaultQdrantPort       = 6334
)

// Internal interfaces, swapped out in tests.
type documentUseCase interface {
	Add(ctx context.Context, subs []*domdoc.Submission) ([]domdoc.Document, error)
	Delete(ctx context.Context, ids []string) ([]string, error)
}

type searchUseCase interface {
	Search(ctx context.Context, text string, topK int, threshold float64) ([]result.Hit, error)
	SearchByField(ctx context.Context, text string, topK int, threshold float64, field, value string) ([]result.Hit, error)
}

// backendStore is what the client needs from a connected store.
type backendStore interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// gateway is the document repository for either backend.
type gateway interface {
	documentuc.Repository
	searchuc.Repository
	EnsureIndex(ctx context.Context) (bool, error)
}

// Client is the semdex SDK entry point.
type Client struct {
	store     backendStore
	docSvc    documentUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to the store and creates the index if missing.
// The provided context is used for the readiness check and index bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: defaultVectorDimensions,
		maxContentTokens: domdoc.DefaultMaxTokens,
		readiness:        defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("semdex: store required (use WithRedis or WithQdrant)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("semdex: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, repo, err := createBackend(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("semdex: store not ready: %w", err)
	}

	created, err := repo.EnsureIndex(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("semdex: ensure index: %w", err)
	}
	if created && cfg.logger != nil {
		cfg.logger.Info("index created", "driver", cfg.driver)
	}

	c, err := wireClient(store, repo, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createBackend(cfg *clientConfig) (backendStore, gateway, error) {
	fields, err := toRepoFields(cfg.fields)
	if err != nil {
		return nil, nil, err
	}
	hnsw := documentrepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct}
	emb := adaptEmbedder(cfg.embedder)

	switch cfg.driver {
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("semdex: create redis store: %w", err)
		}
		repo, err := documentrepo.New(s, emb, documentrepo.Config{
			IndexName:  orDefault(cfg.indexName, defaultIndexName),
			KeyPrefix:  orDefault(cfg.keyPrefix, defaultKeyPrefix),
			Dimensions: cfg.vectorDimensions,
			HNSW:       hnsw,
			Filterable: fields,
		})
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("semdex: %w", err)
		}
		return s, repo, nil
	case driverQdrant:
		port := cfg.qdrantPort
		if port == 0 {
			port = defaultQdrantPort
		}
		s, err := dbQdrant.NewStore(dbQdrant.Config{
			Host:   cfg.qdrantHost,
			Port:   port,
			APIKey: cfg.qdrantAPIKey,
			UseTLS: cfg.qdrantTLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("semdex: create qdrant store: %w", err)
		}
		repo := documentrepo.NewQdrant(s, emb, orDefault(cfg.indexName, defaultCollection),
			cfg.vectorDimensions, hnsw, fields)
		return s, repo, nil
	default:
		return nil, nil, fmt.Errorf("semdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store backendStore, repo gateway, cfg *clientConfig, obs *observer) (*Client, error) {
	admission, err := domdoc.NewAdmission(cfg.maxContentTokens)
	if err != nil {
		return nil, fmt.Errorf("semdex: %w", err)
	}
	return &Client{
		store:     store,
		docSvc:    documentuc.New(repo, admission),
		searchSvc: searchuc.New(repo),
		healthSvc: healthuc.New(store, embeddingHealth{embedder: cfg.embedder}),
		obs:       obs,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	ctx, sp := c.obs.begin(ctx, "ping")
	defer func() { sp.end(err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
