package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semdex/internal/db"
)

// ScoreField is the reply field FT.SEARCH fills with the KNN distance.
const ScoreField = "__vector_score"

// EncodeVector renders v as the FLOAT32 blob stored in HASH vector fields
// and passed as the KNN query parameter.
func EncodeVector(v []float32) string {
	return rueidis.VectorString32(v)
}

// SearchKNN runs FT.SEARCH "<filter>=>[KNN k @vector $BLOB]" sorted by
// distance. Entry scores are cosine similarities clamped to [0,1], best first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, fmt.Errorf("%w: index name is required", db.ErrInvalidQuery)
	case len(q.Vector) == 0:
		return nil, fmt.Errorf("%w: vector is required", db.ErrInvalidQuery)
	case q.K <= 0:
		return nil, fmt.Errorf("%w: k must be positive, got %d", db.ErrInvalidQuery, q.K)
	}

	pre, err := buildFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	if pre == "" {
		pre = "*"
	} else {
		pre = "(" + pre + ")"
	}

	k := strconv.Itoa(q.K)
	args := []string{q.IndexName, pre + "=>[KNN " + k + " @vector $BLOB]"}
	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n+1))
		args = append(append(args, q.ReturnFields...), ScoreField)
	}
	args = append(args,
		"SORTBY", ScoreField,
		"LIMIT", "0", k,
		"PARAMS", "2", "BLOB", EncodeVector(q.Vector),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, opError(db.OpSearch, err)
	}
	return parseKNNReply(raw)
}

// parseKNNReply reads the RESP2 reply [total, key1, [f, v, ...], key2, ...].
// Entries whose key or field list cannot be read are skipped.
func parseKNNReply(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	res := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := make(map[string]string, len(pairs)/2)
		for j := 0; j+1 < len(pairs); j += 2 {
			name, nerr := pairs[j].ToString()
			value, verr := pairs[j+1].ToString()
			if nerr == nil && verr == nil {
				fields[name] = value
			}
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if d, err := strconv.ParseFloat(fields[ScoreField], 64); err == nil {
			entry.Score = max(0, 1-d)
		}
		delete(entry.Fields, ScoreField)
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}
