// Package cache provides ports.ExtractionCache implementations.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

const keyPrefix = "edrdr:extract:"

// Key returns the cache key of a raw record. Records differing only in case
// or surrounding space share a key.
func Key(raw string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(raw))))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache stores extraction results in Redis without expiry.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the configured Redis. It returns nil when no URL
// is configured.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached result, or nil when absent.
func (c *RedisCache) Get(ctx context.Context, raw string) (*ports.ExtractedPerson, error) {
	data, err := c.client.Get(ctx, Key(raw)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading extraction: %w", err)
	}

	var result ports.ExtractedPerson
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding extraction: %w", err)
	}
	return &result, nil
}

// Set stores the result.
func (c *RedisCache) Set(ctx context.Context, raw string, result *ports.ExtractedPerson) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding extraction: %w", err)
	}
	if err := c.client.Set(ctx, Key(raw), data, 0).Err(); err != nil {
		return fmt.Errorf("writing extraction: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
