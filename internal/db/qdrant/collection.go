package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/semdex/internal/db"
)

// PayloadFieldType is the index type of a payload field.
type PayloadFieldType int

// Payload index types.
const (
	PayloadKeyword PayloadFieldType = iota
	PayloadFloat
	PayloadBool
)

// PayloadField is a payload path to index for filtering.
type PayloadField struct {
	Path string
	Type PayloadFieldType
}

// CollectionSpec describes the collection EnsureCollection creates.
type CollectionSpec struct {
	Name          string
	Dimensions    int
	HNSWM         int
	HNSWEFConstr  int
	PayloadFields []PayloadField
}

// EnsureCollection creates the collection and its payload indexes if absent.
// Reports whether the collection was created.
func (s *Store) EnsureCollection(ctx context.Context, spec CollectionSpec) (bool, error) {
	if spec.Name == "" {
		return false, fmt.Errorf("%w: collection name is required", db.ErrInvalidQuery)
	}
	if spec.Dimensions <= 0 {
		return false, fmt.Errorf("%w: dimensions must be positive", db.ErrInvalidQuery)
	}

	exists, err := s.client.CollectionExists(ctx, spec.Name)
	if err != nil {
		return false, opError(db.OpCollectionExists, err)
	}
	if exists {
		return false, nil
	}

	req := &qc.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: &qc.VectorsConfig{
			Config: &qc.VectorsConfig_Params{
				Params: &qc.VectorParams{
					Size:     uint64(spec.Dimensions),
					Distance: qc.Distance_Cosine,
				},
			},
		},
	}
	if spec.HNSWM > 0 || spec.HNSWEFConstr > 0 {
		hnsw := &qc.HnswConfigDiff{}
		if spec.HNSWM > 0 {
			hnsw.M = qc.PtrOf(uint64(spec.HNSWM))
		}
		if spec.HNSWEFConstr > 0 {
			hnsw.EfConstruct = qc.PtrOf(uint64(spec.HNSWEFConstr))
		}
		req.HnswConfig = hnsw
	}

	if err := s.client.CreateCollection(ctx, req); err != nil {
		return false, opError(db.OpCreateCollection, err)
	}

	for _, f := range spec.PayloadFields {
		_, err := s.client.CreateFieldIndex(ctx, &qc.CreateFieldIndexCollection{
			CollectionName: spec.Name,
			FieldName:      f.Path,
			FieldType:      qc.PtrOf(fieldType(f.Type)),
			Wait:           qc.PtrOf(true),
		})
		if err != nil {
			return true, opError(db.OpCreateFieldIndex, fmt.Errorf("field %s: %w", f.Path, err))
		}
	}

	return true, nil
}

func fieldType(t PayloadFieldType) qc.FieldType {
	switch t {
	case PayloadFloat:
		return qc.FieldType_FieldTypeFloat
	case PayloadBool:
		return qc.FieldType_FieldTypeBool
	default:
		return qc.FieldType_FieldTypeKeyword
	}
}
