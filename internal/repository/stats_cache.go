package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wardwatch/grievance-service/internal/domain"
)

const statsCachePrefix = "complaints:stats:"

// StatsCache stores computed dashboard stats under a scope key.
type StatsCache interface {
	Get(ctx context.Context, scope string) (*domain.ComplaintStats, bool, error)
	Set(ctx context.Context, scope string, stats *domain.ComplaintStats, ttl time.Duration) error
	// Invalidate drops every cached scope.
	Invalidate(ctx context.Context) error
}

type redisStatsCache struct {
	client *redis.Client
}

// NewRedisStatsCache builds a StatsCache on client.
func NewRedisStatsCache(client *redis.Client) StatsCache {
	return &redisStatsCache{client: client}
}

func (c *redisStatsCache) Get(ctx context.Context, scope string) (*domain.ComplaintStats, bool, error) {
	raw, err := c.client.Get(ctx, statsCachePrefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stats domain.ComplaintStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *redisStatsCache) Set(ctx context.Context, scope string, stats *domain.ComplaintStats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsCachePrefix+scope, payload, ttl).Err()
}

func (c *redisStatsCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, statsCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
