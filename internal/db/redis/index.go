package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/semdex/internal/db"
)

// CreateIndex issues FT.CREATE ... ON HASH for def. An existing index is
// reported as db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	args := ftCreateArgs(def)
	if err := s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return opError(db.OpCreateIndex, err)
	}
	return nil
}

// IndexExists reports whether FT.INFO knows the index.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, "unknown index name"), isRedisErr(err, "no such index"):
		return false, nil
	default:
		return false, opError(db.OpIndexInfo, err)
	}
}

// ftCreateArgs renders a validated definition. Prefixes are counted,
// vector fields carry their attribute count before the attributes.
func ftCreateArgs(def *db.IndexDefinition) []string {
	args := []string{def.Name, "ON", "HASH"}
	if n := len(def.Prefixes); n > 0 {
		args = append(append(args, "PREFIX", strconv.Itoa(n)), def.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range def.Fields {
		f := &def.Fields[i]
		args = append(args, f.Name)
		if f.Alias != "" {
			args = append(args, "AS", f.Alias)
		}
		switch f.Type {
		case db.IndexFieldTag:
			args = append(args, "TAG", "SEPARATOR", db.TagSeparator)
			if f.TagCaseSensitive {
				args = append(args, "CASESENSITIVE")
			}
		case db.IndexFieldNumeric:
			args = append(args, "NUMERIC")
		case db.IndexFieldVector:
			attrs := hnswAttrs(f.Vector)
			args = append(append(args, "VECTOR", "HNSW", strconv.Itoa(len(attrs))), attrs...)
		}
	}
	return args
}

func hnswAttrs(h db.HNSW) []string {
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(h.Dim),
		"DISTANCE_METRIC", "COSINE",
	}
	if h.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(h.M))
	}
	if h.EFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(h.EFConstruct))
	}
	return attrs
}
