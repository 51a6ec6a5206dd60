package redis

import (
	"context"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semdex/internal/db"
)

// HSetMulti writes every document hash in one pipeline. Fields go out in
// key order so the command text is stable.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	keys := make([]string, len(items))
	cmds := make(rueidis.Commands, len(items))
	for i, it := range items {
		keys[i] = it.Key
		hset := s.b().Hset().Key(it.Key).FieldValue()
		for _, f := range slices.Sorted(maps.Keys(it.Fields)) {
			hset = hset.FieldValue(f, it.Fields[f])
		}
		cmds[i] = hset.Build()
	}
	return s.pipeline(ctx, db.OpHSet, keys, cmds, replyErr)
}

// DelMulti issues one DEL per key so keys may live in different cluster
// slots. The count covers the replies read before any failure.
func (s *Store) DelMulti(ctx context.Context, keys []string) (int64, error) {
	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}

	var deleted int64
	err := s.pipeline(ctx, db.OpDel, keys, cmds, func(_ int, res rueidis.RedisResult) error {
		n, err := res.AsInt64()
		deleted += n
		return err
	})
	return deleted, err
}
