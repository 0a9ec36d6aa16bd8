package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "fees:summary:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisSummaryCache caches projected fee summaries in Redis. Summaries are
// cheap to recompute, so every failure mode degrades to a miss and the
// projection runs again; the TTL is a backstop for missed invalidations.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache creates a summary cache with the given TTL
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached summary for an account, or (nil, nil) on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, accountID uuid.UUID) (*fees.Summary, error) {
	data, err := c.client.Get(ctx, summaryKeyPrefix+accountID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary fees.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Corrupt entry; treat as a miss
		return nil, nil
	}
	return &summary, nil
}

// Set stores the summary for an account
func (c *RedisSummaryCache) Set(ctx context.Context, accountID uuid.UUID, summary fees.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+accountID.String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for an account
func (c *RedisSummaryCache) Invalidate(ctx context.Context, accountID uuid.UUID) error {
	if err := c.client.Del(ctx, summaryKeyPrefix+accountID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}
