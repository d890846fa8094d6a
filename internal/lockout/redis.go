package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	strikeKeyPrefix = "auth:strikes:"
	lockKeyPrefix   = "auth:lock:"
)

// RedisStore shares strike counts across replicas so an attacker cannot
// spread attempts over several instances.
type RedisStore struct {
	rdb      *redis.Client
	max      int
	window   time.Duration
	duration time.Duration
}

func NewRedisStore(rdb *redis.Client, max int, window time.Duration, duration time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, max: max, window: window, duration: duration}
}

func (s *RedisStore) Locked(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check lock: %w", err)
	}

	return n > 0, nil
}

func (s *RedisStore) Strike(ctx context.Context, key string) (bool, error) {
	strikeKey := strikeKeyPrefix + key

	count, err := s.rdb.Incr(ctx, strikeKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment strikes: %w", err)
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, strikeKey, s.window).Err(); err != nil {
			return false, fmt.Errorf("set strike window: %w", err)
		}
	}

	if count < int64(s.max) {
		return false, nil
	}

	if err := s.rdb.Set(ctx, lockKeyPrefix+key, "1", s.duration).Err(); err != nil {
		return false, fmt.Errorf("set lock: %w", err)
	}
	if err := s.rdb.Del(ctx, strikeKey).Err(); err != nil {
		return false, fmt.Errorf("reset strikes: %w", err)
	}

	return true, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, strikeKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear strikes: %w", err)
	}

	return nil
}
