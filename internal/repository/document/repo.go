package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
	"github.com/kailas-cloud/semdex/internal/domain/search/request"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) (int64, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// FieldKind is how a filterable metadata key is indexed.
type FieldKind int

const (
	// FieldTag indexes the value as an exact-match tag.
	FieldTag FieldKind = iota
	// FieldNumeric indexes the value as a number.
	FieldNumeric
)

// FilterField is a metadata key the index can filter on.
type FilterField struct {
	Name string
	Kind FieldKind
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Config describes the index the repository reads and writes.
type Config struct {
	IndexName  string
	KeyPrefix  string
	Dimensions int
	HNSW       HNSWConfig
	Filterable []FilterField
}

// Repo is the Redis-backed document gateway: HASH documents under one FT index.
type Repo struct {
	store    store
	embedder domain.Embedder
	index    *db.IndexDefinition
	prefix   string
}

// New creates a document repository. The index definition is derived from cfg.
func New(s store, e domain.Embedder, cfg Config) (*Repo, error) {
	prefix := cfg.KeyPrefix + "doc:"

	b := db.NewIndex(cfg.IndexName).Prefix(prefix)
	for _, f := range cfg.Filterable {
		switch f.Kind {
		case FieldNumeric:
			b.Numeric(filterFieldPrefix+f.Name, f.Name)
		default:
			b.Tag(filterFieldPrefix+f.Name, f.Name)
		}
	}
	b.Vector(fieldVector, vectorAttr, db.HNSW{Dim: cfg.Dimensions, M: cfg.HNSW.M, EFConstruct: cfg.HNSW.EFConstruct})

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", cfg.IndexName, err)
	}

	return &Repo{store: s, embedder: e, index: def, prefix: prefix}, nil
}

// EnsureIndex creates the FT index if it does not exist. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.index.Name)
	if err != nil {
		return false, storeError("index exists "+r.index.Name, err)
	}
	if exists {
		return false, nil
	}

	if err := r.store.CreateIndex(ctx, r.index); err != nil {
		// Lost a race with another replica.
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, storeError("create index "+r.index.Name, err)
	}
	return true, nil
}

// Add embeds the documents in one batch and writes them in one pipeline.
func (r *Repo) Add(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors, err := embedDocuments(ctx, r.embedder, docs)
	if err != nil {
		return err
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		fields, err := buildHashFields(&docs[i], vectors[i], r.index)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", docs[i].ID(), err)
		}
		items[i] = db.HashSetItem{Key: r.docKey(docs[i].ID()), Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return storeError("add documents", err)
	}
	return nil
}

// Delete removes documents by id. The delete succeeded only if every
// distinct id existed; otherwise the outcome is Failed.
func (r *Repo) Delete(ctx context.Context, ids []string) (domain.DeleteOutcome, error) {
	if len(ids) == 0 {
		return domain.DeleteSucceeded, nil
	}

	seen := make(map[string]struct{}, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, r.docKey(id))
	}

	n, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return domain.DeleteUnknown, storeError("delete documents", err)
	}
	if int(n) != len(keys) {
		return domain.DeleteFailed, nil
	}
	return domain.DeleteSucceeded, nil
}

// SimilaritySearch embeds the query text and runs a KNN search.
// Matches scoring below the threshold are dropped; order is best first.
func (r *Repo) SimilaritySearch(ctx context.Context, q *request.Query) ([]result.Match, error) {
	for _, key := range filter.Keys(q.Filter()) {
		if _, ok := r.index.Field(key); !ok || key == vectorAttr {
			return nil, fmt.Errorf("%w: %q is not a filterable field", domain.ErrUnsupportedFilter, key)
		}
	}

	vec, err := embedQuery(ctx, r.embedder, q.Text())
	if err != nil {
		return nil, err
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index.Name,
		Filter:       q.Filter(),
		Vector:       vec,
		K:            q.TopK(),
		ReturnFields: []string{fieldContent, fieldMetadata},
	})
	if err != nil {
		return nil, storeError("search "+r.index.Name, err)
	}
	if sr == nil {
		return []result.Match{}, nil
	}

	matches := make([]result.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < q.Threshold() {
			continue
		}
		content, meta, err := parseHashFields(entry.Fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Key, err)
		}
		id := strings.TrimPrefix(entry.Key, r.prefix)
		matches = append(matches, result.NewMatch(id, entry.Score, content, meta))
	}
	return matches, nil
}

// Index returns the index definition the repository maintains.
func (r *Repo) Index() *db.IndexDefinition {
	return r.index
}

func (r *Repo) docKey(id string) string {
	return r.prefix + id
}
