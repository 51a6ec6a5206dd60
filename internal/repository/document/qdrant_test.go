package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/db/qdrant"
	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
	"github.com/kailas-cloud/semdex/internal/domain/search/request"
)

const (
	uuidA = "0b6a4a57-5f0e-4d43-8d55-2a9d8b0b1a01"
	uuidB = "0b6a4a57-5f0e-4d43-8d55-2a9d8b0b1a02"
)

func TestQdrantEnsureIndex_CollectionSpec(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)

	var spec qdrant.CollectionSpec
	ms.ensureFn = func(_ context.Context, s qdrant.CollectionSpec) (bool, error) {
		spec = s
		return true, nil
	}

	created, err := repo.EnsureIndex(context.Background())
	if err != nil || !created {
		t.Fatalf("expected (true, nil), got (%v, %v)", created, err)
	}
	if spec.Name != "lyrics" || spec.Dimensions != 3 || spec.HNSWM != 16 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if len(spec.PayloadFields) != 2 ||
		spec.PayloadFields[0] != (qdrant.PayloadField{Path: "metadata.artist", Type: qdrant.PayloadKeyword}) ||
		spec.PayloadFields[1] != (qdrant.PayloadField{Path: "metadata.year", Type: qdrant.PayloadFloat}) {
		t.Fatalf("unexpected payload fields: %+v", spec.PayloadFields)
	}
}

func TestQdrantAdd(t *testing.T) {
	repo, ms, emb := newTestQdrantRepo(t)

	var got []qdrant.Point
	ms.upsertFn = func(_ context.Context, collection string, points []qdrant.Point) error {
		if collection != "lyrics" {
			t.Errorf("unexpected collection: %s", collection)
		}
		got = points
		return nil
	}

	docs := []domdoc.Document{
		domdoc.Reconstruct(uuidA, "la la la", metadata.Map{"artist": metadata.String("X")}),
	}
	if err := repo.Add(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.batchCalls != 1 {
		t.Fatalf("expected one batch embed, got %d", emb.batchCalls)
	}
	if len(got) != 1 || got[0].ID != uuidA || len(got[0].Vector) != 3 {
		t.Fatalf("unexpected points: %+v", got)
	}
	if got[0].Payload["content"] != "la la la" {
		t.Fatalf("unexpected content payload: %v", got[0].Payload)
	}
	meta, ok := got[0].Payload["metadata"].(map[string]any)
	if !ok || meta["artist"] != "X" {
		t.Fatalf("unexpected metadata payload: %v", got[0].Payload["metadata"])
	}
}

func TestQdrantAdd_StoreError(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)
	ms.upsertFn = func(_ context.Context, _ string, _ []qdrant.Point) error {
		return &db.Error{Op: db.OpUpsert, Err: db.ErrRejected}
	}

	err := repo.Add(context.Background(), []domdoc.Document{domdoc.Reconstruct(uuidA, "x", nil)})
	if !errors.Is(err, domain.ErrStoreRejected) {
		t.Fatalf("expected ErrStoreRejected, got %v", err)
	}
}

func TestQdrantDelete(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)

	var gotIDs []string
	ms.deleteFn = func(_ context.Context, _ string, ids []string) (domain.DeleteOutcome, error) {
		gotIDs = ids
		return domain.DeleteUnknown, nil
	}

	got, err := repo.Delete(context.Background(), []string{uuidA, uuidB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.DeleteUnknown {
		t.Fatalf("expected store outcome to pass through, got %s", got)
	}
	if len(gotIDs) != 2 || gotIDs[1] != uuidB {
		t.Fatalf("unexpected ids: %v", gotIDs)
	}
}

func TestQdrantDelete_NonUUIDFails(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)
	ms.deleteFn = func(_ context.Context, _ string, _ []string) (domain.DeleteOutcome, error) {
		t.Fatal("DeletePoints must not be called")
		return domain.DeleteSucceeded, nil
	}

	got, err := repo.Delete(context.Background(), []string{uuidA, "not-a-uuid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.DeleteFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestQdrantDelete_Error(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)
	ms.deleteFn = func(_ context.Context, _ string, _ []string) (domain.DeleteOutcome, error) {
		return domain.DeleteUnknown, &db.Error{Op: db.OpDeletePoints, Err: errors.New("unavailable")}
	}

	_, err := repo.Delete(context.Background(), []string{uuidA})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestQdrantSimilaritySearch(t *testing.T) {
	repo, ms, _ := newTestQdrantRepo(t)
	expr := filter.Eq("artist", metadata.String("X"))

	var gotQuery *qdrant.Query
	ms.searchFn = func(_ context.Context, q *qdrant.Query) ([]qdrant.ScoredPoint, error) {
		gotQuery = q
		return []qdrant.ScoredPoint{
			{ID: uuidA, Score: 0.9, Payload: map[string]any{
				"content":  "la la la",
				"metadata": map[string]any{"artist": "X", "year": int64(1999)},
			}},
			{ID: uuidB, Score: 0.8, Payload: map[string]any{"content": "hum"}},
		}, nil
	}

	q := request.New("rain", 2, 0.75, request.WithFilter(expr))
	matches, err := repo.SimilaritySearch(context.Background(), &q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.Collection != "lyrics" || gotQuery.Limit != 2 || gotQuery.MinScore != 0.75 {
		t.Fatalf("unexpected query: %+v", gotQuery)
	}
	if gotQuery.FilterPrefix != "metadata." || gotQuery.Filter.String() != expr.String() {
		t.Fatalf("unexpected filter: %q %v", gotQuery.FilterPrefix, gotQuery.Filter)
	}
	if len(matches) != 2 || matches[0].ID() != uuidA || matches[1].Content() != "hum" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if year, _ := matches[0].Metadata()["year"].AsNumber(); year != 1999 {
		t.Fatalf("unexpected year: %v", matches[0].Metadata())
	}
	if len(matches[1].Metadata()) != 0 {
		t.Fatalf("expected empty metadata, got %v", matches[1].Metadata())
	}
}

func TestQdrantSimilaritySearch_EmbeddingError(t *testing.T) {
	repo, _, emb := newTestQdrantRepo(t)
	emb.err = errors.New("boom")

	q := request.New("rain", 2, 0)
	_, err := repo.SimilaritySearch(context.Background(), &q)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
