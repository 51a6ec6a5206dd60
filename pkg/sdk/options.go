package semdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverRedis  = "redis"
	driverQdrant = "qdrant"
)

type clientConfig struct {
	driver   string // "redis" or "qdrant"
	addrs    []string
	password string

	qdrantHost   string
	qdrantPort   int
	qdrantAPIKey string
	qdrantTLS    bool

	indexName string // FT index on redis, collection on qdrant
	keyPrefix string

	embedder Embedder

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	fields           []Field
	maxContentTokens int
	readiness        time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores documents as hashes in a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithQdrant stores documents as points in a Qdrant collection over gRPC.
func WithQdrant(host string, port int, apiKey string, useTLS bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverQdrant
		c.qdrantHost = host
		c.qdrantPort = port
		c.qdrantAPIKey = apiKey
		c.qdrantTLS = useTLS
	})
}

// WithIndex names the index (or Qdrant collection) and the Redis key prefix.
// Defaults: "semdex_idx" and "semdex:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = keyPrefix
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the embedding dimension. Defaults to 1536.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithFilterField makes a metadata key filterable. May be repeated.
func WithFilterField(name string, typ FieldType) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = append(c.fields, Field{Name: name, Type: typ})
	})
}

// WithMaxContentTokens sets the embedding model's token limit used for the
// ingest word ceiling. Defaults to 8192.
func WithMaxContentTokens(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxContentTokens = n
	})
}

// WithReadinessTimeout bounds the initial wait for the store. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readiness = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
