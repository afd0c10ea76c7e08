package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ammiranda/category_service/config"
	"github.com/ammiranda/category_service/models"
)

const (
	treeKey        = "tree"
	categoryPrefix = "category:"
	defaultTTL     = 5 * time.Minute
)

func categoryKey(id int64) string {
	return categoryPrefix + strconv.FormatInt(id, 10)
}

// Provider defines the interface for cache implementations.
// It caches the assembled category forest and single-category subtrees.
// A provider never reports errors on reads: any failure is a miss.
type Provider interface {
	// GetTree retrieves the full forest from cache if available.
	GetTree(ctx context.Context) ([]*models.CategoryResponse, bool)

	// SetTree stores the full forest in cache.
	SetTree(ctx context.Context, tree []*models.CategoryResponse)

	// GetCategory retrieves the subtree rooted at id from cache if available.
	GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool)

	// SetCategory stores the subtree rooted at id in cache.
	SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse)

	// InvalidateCache removes all cached data.
	// This is called after every successful mutation.
	InvalidateCache(ctx context.Context) error

	// SetCacheTTL sets the time-to-live applied to subsequent writes.
	SetCacheTTL(ttl time.Duration)

	// Initialize performs any necessary setup, such as checking the
	// connection or creating a table.
	Initialize(ctx context.Context) error
}

// New creates and initializes the provider selected by cfg. logger receives
// the Redis provider's degraded-read and write warnings.
func New(ctx context.Context, cfg *config.CacheConfig, logger *slog.Logger) (Provider, error) {
	var provider Provider
	switch cfg.Driver {
	case config.CacheMemory:
		provider = NewMemoryCache()
	case config.CacheRedis:
		provider = NewRedisCache(cfg.RedisAddr(), cfg.RedisPassword, logger)
	case config.CacheDynamoDB:
		dynamo, err := NewDynamoDBCache(ctx, cfg.DynamoDBTable)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb cache: %w", err)
		}
		provider = dynamo
	case config.CacheNone:
		provider = NewNoopCache()
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	if cfg.TTL > 0 {
		provider.SetCacheTTL(cfg.TTL)
	}
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s cache: %w", cfg.Driver, err)
	}
	return provider, nil
}
