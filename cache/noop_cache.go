package cache

import (
	"context"
	"time"

	"github.com/ammiranda/category_service/models"
)

// NoopCache implements Provider without storing anything; every read misses
type NoopCache struct{}

// NewNoopCache creates a cache that never hits
func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Initialize(ctx context.Context) error { return nil }

func (NoopCache) GetTree(ctx context.Context) ([]*models.CategoryResponse, bool) { return nil, false }

func (NoopCache) SetTree(ctx context.Context, tree []*models.CategoryResponse) {}

func (NoopCache) GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool) {
	return nil, false
}

func (NoopCache) SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse) {}

func (NoopCache) InvalidateCache(ctx context.Context) error { return nil }

func (NoopCache) SetCacheTTL(ttl time.Duration) {}
