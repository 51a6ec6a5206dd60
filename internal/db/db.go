// Package db declares the storage surface semdex needs from a vector store
// and the backend-neutral types that cross it.
package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
)

// Store is everything the Redis backend offers. Consumers depend on the
// narrow interfaces below.
//
//nolint:interfacebloat
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one document hash written by HSetMulti.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	// DelMulti removes keys in one round-trip and returns how many existed.
	DelMulti(ctx context.Context, keys []string) (int64, error)
}

type KVItem struct {
	Key   string
	Value []byte
}

// KVStore backs the embedding cache.
type KVStore interface {
	// GetMulti returns values in key order; missing keys yield nil.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	SetMultiWithTTL(ctx context.Context, items []KVItem, ttl time.Duration) error
}

type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// KNNQuery asks for the K nearest vectors in IndexName, optionally
// restricted by Filter. ReturnFields limits the hash fields loaded per hit.
type KNNQuery struct {
	IndexName    string
	Filter       filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult holds hits ordered by descending Score (cosine similarity).
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
