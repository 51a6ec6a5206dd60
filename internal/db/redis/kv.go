package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semdex/internal/db"
)

// GetMulti pipelines one GET per key. Missing keys yield nil entries; any
// other failure fails the whole call.
func (s *Store) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Get().Key(key).Build()
	}

	out := make([][]byte, len(keys))
	err := s.pipeline(ctx, db.OpGet, keys, cmds, func(i int, res rueidis.RedisResult) error {
		data, err := res.AsBytes()
		if rueidis.IsRedisNil(err) {
			return nil
		}
		out[i] = data
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetMultiWithTTL pipelines SET key value EX ttl for every item.
func (s *Store) SetMultiWithTTL(ctx context.Context, items []db.KVItem, ttl time.Duration) error {
	keys := make([]string, len(items))
	cmds := make(rueidis.Commands, len(items))
	for i, it := range items {
		keys[i] = it.Key
		cmds[i] = s.b().Set().Key(it.Key).Value(rueidis.BinaryString(it.Value)).Ex(ttl).Build()
	}
	return s.pipeline(ctx, db.OpSet, keys, cmds, replyErr)
}
