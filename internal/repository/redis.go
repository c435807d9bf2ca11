package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rentyield/yieldgate/internal/config"
	"github.com/rentyield/yieldgate/internal/model"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// RedisTelemetryCache holds the latest venue descriptor per venue with
// a TTL, so a stale reading ages out instead of masquerading as live.
type RedisTelemetryCache struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisTelemetryCache(client *RedisClient, ttl time.Duration) *RedisTelemetryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisTelemetryCache{client: client, ttl: ttl}
}

func (c *RedisTelemetryCache) PutDescriptor(ctx context.Context, d model.VenueDescriptor) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.client.Client.Set(ctx, c.key(d.Name), payload, c.ttl).Err()
}

// GetDescriptor returns (nil, nil) on a cache miss.
func (c *RedisTelemetryCache) GetDescriptor(ctx context.Context, name string) (*model.VenueDescriptor, error) {
	raw, err := c.client.Client.Get(ctx, c.key(name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d model.VenueDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *RedisTelemetryCache) key(name string) string {
	return "venue:telemetry:" + name
}
