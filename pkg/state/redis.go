package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "perceval:watermark:"

// RedisStore keeps watermarks in Redis, for deployments where several
// harvester instances share incremental state.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig configures a Redis-backed store.
type RedisConfig struct {
	Addr     string // host:port
	Password string // empty for none
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load watermark: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse watermark: %w", err)
	}
	return t.UTC(), true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, t time.Time) error {
	val := t.UTC().Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, redisKeyPrefix+key, val, 0).Err(); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
