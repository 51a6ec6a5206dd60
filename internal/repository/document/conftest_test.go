package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/db/qdrant"
	"github.com/kailas-cloud/semdex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	delMultiFn    func(ctx context.Context, keys []string) (int64, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int64, error) {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return int64(len(keys)), nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

// mockPointStore implements pointStore for tests.
type mockPointStore struct {
	ensureFn func(ctx context.Context, spec qdrant.CollectionSpec) (bool, error)
	upsertFn func(ctx context.Context, collection string, points []qdrant.Point) error
	deleteFn func(ctx context.Context, collection string, ids []string) (domain.DeleteOutcome, error)
	searchFn func(ctx context.Context, q *qdrant.Query) ([]qdrant.ScoredPoint, error)
}

func (m *mockPointStore) EnsureCollection(ctx context.Context, spec qdrant.CollectionSpec) (bool, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, spec)
	}
	return false, nil
}

func (m *mockPointStore) Upsert(ctx context.Context, collection string, points []qdrant.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, points)
	}
	return nil
}

func (m *mockPointStore) DeletePoints(
	ctx context.Context, collection string, ids []string,
) (domain.DeleteOutcome, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, collection, ids)
	}
	return domain.DeleteSucceeded, nil
}

func (m *mockPointStore) Search(ctx context.Context, q *qdrant.Query) ([]qdrant.ScoredPoint, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, nil
}

// mockEmbedder returns a fixed vector per text and supports native batching.
type mockEmbedder struct {
	vector     []float32
	tokens     int
	err        error
	calls      int
	batchCalls int
	lastBatch  []string
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector, TotalTokens: m.tokens}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.lastBatch = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: m.tokens * len(texts)}, nil
}

func testConfig() Config {
	return Config{
		IndexName:  "semdex_idx",
		KeyPrefix:  "semdex:",
		Dimensions: 3,
		HNSW:       HNSWConfig{M: 16, EFConstruct: 200},
		Filterable: []FilterField{
			{Name: "artist", Kind: FieldTag},
			{Name: "year", Kind: FieldNumeric},
		},
	}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	emb := &mockEmbedder{vector: []float32{0.1, 0.2, 0.3}, tokens: 4}
	repo, err := New(ms, emb, testConfig())
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo, ms, emb
}

func newTestQdrantRepo(t *testing.T) (*QdrantRepo, *mockPointStore, *mockEmbedder) {
	t.Helper()
	ms := &mockPointStore{}
	emb := &mockEmbedder{vector: []float32{0.1, 0.2, 0.3}, tokens: 4}
	cfg := testConfig()
	repo := NewQdrant(ms, emb, "lyrics", cfg.Dimensions, cfg.HNSW, cfg.Filterable)
	return repo, ms, emb
}
