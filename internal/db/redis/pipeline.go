package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

// pipeline sends cmds in one DoMulti round-trip and hands each reply to
// each. keys[i] names the key behind cmds[i] in errors. The first failure
// stops iteration and is reported as op.
func (s *Store) pipeline(
	ctx context.Context, op string, keys []string, cmds rueidis.Commands,
	each func(i int, res rueidis.RedisResult) error,
) error {
	if len(cmds) == 0 {
		return nil
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := each(i, res); err != nil {
			return opError(op, fmt.Errorf("key %s: %w", keys[i], err))
		}
	}
	return nil
}

func replyErr(_ int, res rueidis.RedisResult) error { return res.Error() }
