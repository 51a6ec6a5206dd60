package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/semdex/internal/db/qdrant"
	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/request"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
)

const (
	payloadContent  = "content"
	payloadMetadata = "metadata"
)

// pointStore is the consumer interface for the Qdrant backend (ISP).
type pointStore interface {
	EnsureCollection(ctx context.Context, spec qdrant.CollectionSpec) (bool, error)
	Upsert(ctx context.Context, collection string, points []qdrant.Point) error
	DeletePoints(ctx context.Context, collection string, ids []string) (domain.DeleteOutcome, error)
	Search(ctx context.Context, q *qdrant.Query) ([]qdrant.ScoredPoint, error)
}

// QdrantRepo is the Qdrant-backed document gateway. Each document is one
// point whose payload holds content and metadata.
type QdrantRepo struct {
	store    pointStore
	embedder domain.Embedder
	spec     qdrant.CollectionSpec
}

// NewQdrant creates a Qdrant document repository over one collection.
// Filterable fields get payload indexes when the collection is created.
func NewQdrant(s pointStore, e domain.Embedder, collection string, dims int, hnsw HNSWConfig,
	filterable []FilterField,
) *QdrantRepo {
	spec := qdrant.CollectionSpec{
		Name:         collection,
		Dimensions:   dims,
		HNSWM:        hnsw.M,
		HNSWEFConstr: hnsw.EFConstruct,
	}
	for _, f := range filterable {
		t := qdrant.PayloadKeyword
		if f.Kind == FieldNumeric {
			t = qdrant.PayloadFloat
		}
		spec.PayloadFields = append(spec.PayloadFields, qdrant.PayloadField{
			Path: payloadMetadata + "." + f.Name,
			Type: t,
		})
	}
	return &QdrantRepo{store: s, embedder: e, spec: spec}
}

// EnsureIndex creates the collection if it does not exist. Returns true if created.
func (r *QdrantRepo) EnsureIndex(ctx context.Context) (bool, error) {
	created, err := r.store.EnsureCollection(ctx, r.spec)
	if err != nil {
		return created, storeError("ensure collection "+r.spec.Name, err)
	}
	return created, nil
}

// Add embeds the documents in one batch and upserts them in one request.
func (r *QdrantRepo) Add(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors, err := embedDocuments(ctx, r.embedder, docs)
	if err != nil {
		return err
	}

	points := make([]qdrant.Point, len(docs))
	for i := range docs {
		points[i] = qdrant.Point{
			ID:     docs[i].ID(),
			Vector: vectors[i],
			Payload: map[string]any{
				payloadContent:  docs[i].Content(),
				payloadMetadata: docs[i].Metadata().Any(),
			},
		}
	}

	if err := r.store.Upsert(ctx, r.spec.Name, points); err != nil {
		return storeError("add documents", err)
	}
	return nil
}

// Delete removes points by id. Qdrant ids are UUIDs, so a batch carrying
// any other id cannot be fully deleted and fails without a round-trip.
func (r *QdrantRepo) Delete(ctx context.Context, ids []string) (domain.DeleteOutcome, error) {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return domain.DeleteFailed, nil
		}
	}

	outcome, err := r.store.DeletePoints(ctx, r.spec.Name, ids)
	if err != nil {
		return domain.DeleteUnknown, storeError("delete documents", err)
	}
	return outcome, nil
}

// SimilaritySearch embeds the query text and queries the collection.
// The threshold is applied by Qdrant.
func (r *QdrantRepo) SimilaritySearch(ctx context.Context, q *request.Query) ([]result.Match, error) {
	vec, err := embedQuery(ctx, r.embedder, q.Text())
	if err != nil {
		return nil, err
	}

	points, err := r.store.Search(ctx, &qdrant.Query{
		Collection:   r.spec.Name,
		Vector:       vec,
		Limit:        q.TopK(),
		MinScore:     q.Threshold(),
		Filter:       q.Filter(),
		FilterPrefix: payloadMetadata + ".",
	})
	if err != nil {
		return nil, storeError("search "+r.spec.Name, err)
	}

	matches := make([]result.Match, 0, len(points))
	for _, p := range points {
		content, _ := p.Payload[payloadContent].(string)
		meta := metadata.Map{}
		if raw, ok := p.Payload[payloadMetadata].(map[string]any); ok {
			if meta, err = metadata.MapFromAny(raw); err != nil {
				return nil, fmt.Errorf("decode point %s: %w", p.ID, err)
			}
		}
		matches = append(matches, result.NewMatch(p.ID, p.Score, content, meta))
	}
	return matches, nil
}
