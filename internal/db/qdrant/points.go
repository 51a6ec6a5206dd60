package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
)

// Point is a vector with its payload. ID must be a UUID.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a single query hit.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Query is a similarity query against one collection.
type Query struct {
	Collection string
	Vector     []float32
	Limit      int
	// MinScore drops points scoring below it.
	MinScore float64
	Filter   filter.Expression
	// FilterPrefix is prepended to every filter key, e.g. "metadata.".
	FilterPrefix string
}

// Upsert writes points in one request and waits until they are applied.
func (s *Store) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	pts := make([]*qc.PointStruct, len(points))
	for i, p := range points {
		pts[i] = &qc.PointStruct{
			Id:      qc.NewIDUUID(p.ID),
			Vectors: qc.NewVectors(p.Vector...),
			Payload: qc.NewValueMap(p.Payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: collection,
		Wait:           qc.PtrOf(true),
		Points:         pts,
	})
	if err != nil {
		return opError(db.OpUpsert, err)
	}
	return nil
}

// DeletePoints removes points by id and reports the operation status.
// Qdrant deletes missing ids silently, so existence is checked first and a
// batch naming any absent point reports DeleteFailed, as DEL does on Redis.
func (s *Store) DeletePoints(ctx context.Context, collection string, ids []string) (domain.DeleteOutcome, error) {
	if len(ids) == 0 {
		return domain.DeleteSucceeded, nil
	}

	seen := make(map[string]struct{}, len(ids))
	pids := make([]*qc.PointId, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pids = append(pids, qc.NewIDUUID(id))
	}

	found, err := s.client.Get(ctx, &qc.GetPoints{
		CollectionName: collection,
		Ids:            pids,
		WithPayload:    qc.NewWithPayload(false),
		WithVectors:    qc.NewWithVectors(false),
	})
	if err != nil {
		return domain.DeleteUnknown, opError(db.OpDeletePoints, err)
	}

	res, err := s.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: collection,
		Wait:           qc.PtrOf(true),
		Points:         qc.NewPointsSelector(pids...),
	})
	if err != nil {
		return domain.DeleteUnknown, opError(db.OpDeletePoints, err)
	}

	switch res.GetStatus() {
	case qc.UpdateStatus_Completed:
		if len(found) != len(pids) {
			return domain.DeleteFailed, nil
		}
		return domain.DeleteSucceeded, nil
	case qc.UpdateStatus_Acknowledged:
		return domain.DeleteUnknown, nil
	default:
		return domain.DeleteFailed, nil
	}
}

// Search runs a nearest-neighbour query. Scores are cosine similarities clamped to [0,1].
func (s *Store) Search(ctx context.Context, q *Query) ([]ScoredPoint, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("%w: collection is required", db.ErrInvalidQuery)
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("%w: vector is required", db.ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", db.ErrInvalidQuery, q.Limit)
	}

	flt, err := buildFilter(q.Filter, q.FilterPrefix)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Query(ctx, &qc.QueryPoints{
		CollectionName: q.Collection,
		Query:          qc.NewQuery(q.Vector...),
		Limit:          qc.PtrOf(uint64(q.Limit)),
		ScoreThreshold: qc.PtrOf(float32(q.MinScore)),
		Filter:         flt,
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, opError(db.OpQuery, err)
	}

	out := make([]ScoredPoint, 0, len(resp))
	for _, r := range resp {
		out = append(out, ScoredPoint{
			ID:      pointID(r.GetId()),
			Score:   max(0, float64(r.GetScore())),
			Payload: payloadToAny(r.GetPayload()),
		})
	}
	return out, nil
}

func pointID(id *qc.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.GetPointIdOptions().(type) {
	case *qc.PointId_Uuid:
		return x.Uuid
	case *qc.PointId_Num:
		return fmt.Sprintf("%d", x.Num)
	}
	return ""
}

func payloadToAny(payload map[string]*qc.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = valueToAny(v)
	}
	return out
}

func valueToAny(v *qc.Value) any {
	switch val := v.GetKind().(type) {
	case *qc.Value_BoolValue:
		return val.BoolValue
	case *qc.Value_IntegerValue:
		return val.IntegerValue
	case *qc.Value_DoubleValue:
		return val.DoubleValue
	case *qc.Value_StringValue:
		return val.StringValue
	case *qc.Value_ListValue:
		out := make([]any, len(val.ListValue.GetValues()))
		for i, lv := range val.ListValue.GetValues() {
			out[i] = valueToAny(lv)
		}
		return out
	case *qc.Value_StructValue:
		return payloadToAny(val.StructValue.GetFields())
	}
	return nil
}
