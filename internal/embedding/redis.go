package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "career:embedding:"

// RedisStore is a VectorStore shared by every process pointing at the same Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at url and verifies the connection
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get returns the stored vector or nil when absent
func (s *RedisStore) Get(ctx context.Context, model, text string) ([]float32, error) {
	buf, err := s.client.Get(ctx, redisKey(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return DecodeVector(buf)
}

// Put stores a vector with the configured TTL (0 keeps it forever)
func (s *RedisStore) Put(ctx context.Context, model, text string, vec []float32) error {
	if err := s.client.Set(ctx, redisKey(model, text), EncodeVector(vec), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return redisKeyPrefix + model + ":" + hex.EncodeToString(sum[:])
}
