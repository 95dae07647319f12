package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/darasa/storage/kvstore"
)

type storage struct {
	client *redis.Client
	ttl    time.Duration // 0 -> no expiry
}

var _ kvstore.Storage = (*storage)(nil)

func New(client *redis.Client, ttl time.Duration) kvstore.Storage {
	return &storage{client: client, ttl: ttl}
}

func (s *storage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "getting %q", key)
	}
	return val, nil
}

func (s *storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}

func (s *storage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "removing %q", key)
	}
	return nil
}
