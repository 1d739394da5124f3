package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:sess:"

// RedisStore keeps session bags in Redis hashes so multiple gateway
// replicas can share them. Every write refreshes the hash TTL; an idle
// session expires server-side, which downstream validity predicates
// treat the same as a cleared one.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	name := redisKeyPrefix + sid
	if err := s.client.HSet(ctx, name, key, value).Err(); err != nil {
		return fmt.Errorf("persist session value: %w", err)
	}
	if err := s.client.Expire(ctx, name, s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh session ttl: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, error) {
	value, err := s.client.HGet(ctx, redisKeyPrefix+sid, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("load session value: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Remove(ctx context.Context, sid, key string) error {
	if err := s.client.HDel(ctx, redisKeyPrefix+sid, key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("remove session value: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sid).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
