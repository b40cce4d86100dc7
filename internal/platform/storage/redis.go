package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection under Prefix+name.
type RedisStore struct {
	Client redis.Cmdable
	Prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix}
}

func (s *RedisStore) key(c Collection) string {
	return s.Prefix + string(c)
}

func (s *RedisStore) Load(ctx context.Context, c Collection) (Snapshot, error) {
	raw, err := s.Client.Get(ctx, s.key(c)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{Collection: c, State: Empty}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", c, err)
	}
	return snapshotFrom(c, raw)
}

func (s *RedisStore) Save(ctx context.Context, c Collection, doc any) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	if err := s.Client.Set(ctx, s.key(c), string(data), 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}
	return nil
}
