package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ammiranda/category_service/models"

	"github.com/redis/go-redis/v9"
)

// redisHashKey holds every cached view as one field of a single hash, so
// eviction is a single DEL.
const redisHashKey = "categories:cache"

// RedisCache implements Provider using Redis
type RedisCache struct {
	client *redis.Client
	mu     sync.RWMutex
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a new Redis cache provider for addr (host:port).
// A nil logger falls back to slog.Default.
func NewRedisCache(addr, password string, logger *slog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})
	return NewRedisCacheWithClient(client, logger)
}

// NewRedisCacheWithClient creates a Redis cache provider around an existing client
func NewRedisCacheWithClient(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client: client,
		ttl:    defaultTTL,
		logger: logger.With("cache", "redis"),
	}
}

// Initialize checks that Redis is reachable
func (c *RedisCache) Initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, field string, dest any) bool {
	data, err := c.client.HGet(ctx, redisHashKey, field).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache read failed", "field", field, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("redis cache entry corrupt", "field", field, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, field string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.mu.RLock()
	ttl := c.ttl
	c.mu.RUnlock()

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisHashKey, field, data)
		pipe.Expire(ctx, redisHashKey, ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn("redis cache write failed", "field", field, "error", err)
	}
}

// GetTree retrieves the forest from cache if available
func (c *RedisCache) GetTree(ctx context.Context) ([]*models.CategoryResponse, bool) {
	var tree []*models.CategoryResponse
	if !c.get(ctx, treeKey, &tree) {
		return nil, false
	}
	return tree, true
}

// SetTree stores the forest in cache
func (c *RedisCache) SetTree(ctx context.Context, tree []*models.CategoryResponse) {
	c.set(ctx, treeKey, tree)
}

// GetCategory retrieves a subtree from cache if available
func (c *RedisCache) GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool) {
	var resp models.CategoryResponse
	if !c.get(ctx, categoryKey(id), &resp) {
		return nil, false
	}
	return &resp, true
}

// SetCategory stores a subtree in cache
func (c *RedisCache) SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse) {
	c.set(ctx, categoryKey(id), resp)
}

// InvalidateCache removes every cached view
func (c *RedisCache) InvalidateCache(ctx context.Context) error {
	return c.client.Del(ctx, redisHashKey).Err()
}

// SetCacheTTL sets the cache time-to-live duration
func (c *RedisCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
