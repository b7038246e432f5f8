package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mdrcore/internal/db"
)

// SetAndAppend writes the current value, its history entry and the index
// membership in a single MULTI/EXEC round-trip.
func (s *Store) SetAndAppend(
	ctx context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string,
) error {
	return s.exec(ctx,
		s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build(),
		s.b().Rpush().Key(listKey).Element(rueidis.BinaryString(entry)).Build(),
		s.b().Sadd().Key(setKey).Member(member).Build(),
	)
}

// DeleteAndRemove deletes keys and drops the index membership atomically.
func (s *Store) DeleteAndRemove(ctx context.Context, keys []string, setKey, member string) error {
	if len(keys) == 0 {
		return s.SRem(ctx, setKey, member)
	}
	return s.exec(ctx,
		s.b().Del().Key(keys...).Build(),
		s.b().Srem().Key(setKey).Member(member).Build(),
	)
}

// exec wraps cmds in MULTI/EXEC and surfaces the first failure, whether
// it happened while queueing or inside EXEC.
func (s *Store) exec(ctx context.Context, cmds ...rueidis.Completed) error {
	batch := make([]rueidis.Completed, 0, len(cmds)+2)
	batch = append(batch, s.b().Multi().Build())
	batch = append(batch, cmds...)
	batch = append(batch, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, batch...)
	for i, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpMulti, Err: fmt.Errorf("command %d: %w", i, err)}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return &db.Error{Op: db.OpMulti, Err: err}
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: db.OpMulti, Err: fmt.Errorf("command %d: %w", i+1, err)}
		}
	}
	return nil
}
