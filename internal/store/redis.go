package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/edumentor-backend/internal/platform/logger"
)

type redisStore struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedis connects using REDIS_ADDR and REDIS_PASSWORD. Each kind maps to a
// redis hash, so List is a single HVALS.
func NewRedis(baseLog *logger.Logger) (KV, error) {
	log := baseLog.With("store", "redis")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Connected to redis", "addr", addr)
	return &redisStore{client: client, log: log}, nil
}

func (s *redisStore) key(kind string) string { return "edu:" + kind }

func (s *redisStore) Get(ctx context.Context, kind, id string) ([]byte, error) {
	v, err := s.client.HGet(ctx, s.key(kind), id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s/%s: %w", kind, id, err)
	}
	return v, nil
}

func (s *redisStore) Put(ctx context.Context, kind, id string, value []byte) error {
	if err := s.client.HSet(ctx, s.key(kind), id, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, kind, id string) error {
	if err := s.client.HDel(ctx, s.key(kind), id).Err(); err != nil {
		return fmt.Errorf("redis hdel %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context, kind string) ([][]byte, error) {
	vals, err := s.client.HVals(ctx, s.key(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hvals %s: %w", kind, err)
	}
	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		out = append(out, []byte(v))
	}
	return out, nil
}

func (s *redisStore) Close() error { return s.client.Close() }
