package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached results between processes. Keys are
// "{namespace}:{key}".
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewRedisStore wraps rdb. If namespace is empty it uses "stocks".
func NewRedisStore(rdb *redis.Client, namespace string, logger *slog.Logger) *RedisStore {
	if namespace == "" {
		namespace = "stocks"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{rdb: rdb, namespace: namespace, logger: logger}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	k := s.key(key)
	b, err := s.rdb.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "redis get failed", "key", k, "error", err)
		}
		return nil, false
	}
	return b, len(b) > 0
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	k := s.key(key)
	if err := s.rdb.Set(ctx, k, val, ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "redis set failed", "key", k, "error", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	_ = s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + safe(key)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
