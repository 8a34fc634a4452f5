// Package ratecache mirrors the committed treasury rate snapshot into Redis
// so read paths can skip the database.
package ratecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ustbills/internal/models"
)

const snapshotKey = "ustbills:treasury_rates"

// Snapshot is the cached form of the rate table.
type Snapshot struct {
	Version     int64                 `json:"version"`
	Fingerprint string                `json:"fingerprint"`
	FetchedAt   time.Time             `json:"fetched_at"`
	Rates       []models.TreasuryRate `json:"rates"`
}

// Cache stores and loads rate snapshots.
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snapshot *Snapshot) error
}

// RedisCache is a Cache backed by a single Redis key.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot. A missing key is reported as redis.Nil.
func (c *RedisCache) Get(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set replaces the cached snapshot unless a newer version is already stored.
func (c *RedisCache) Set(ctx context.Context, snapshot *Snapshot) error {
	if current, err := c.Get(ctx); err == nil && current.Version > snapshot.Version {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
}
