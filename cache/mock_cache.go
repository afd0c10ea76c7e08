package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ammiranda/category_service/models"
)

// MockCache is a cache provider that can be used for testing
type MockCache struct {
	mu               sync.RWMutex
	tree             []*models.CategoryResponse
	categories       map[int64]*models.CategoryResponse
	ttl              time.Duration
	GetTreeCalls     int
	SetTreeCalls     int
	GetCategoryCalls int
	SetCategoryCalls int
	InvalidateCalls  int
	SetTTLCalls      int
	InitCalls        int
	ShouldFail       bool
}

// NewMockCache creates a new mock cache provider
func NewMockCache() *MockCache {
	return &MockCache{
		ttl:        defaultTTL,
		categories: make(map[int64]*models.CategoryResponse),
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *MockCache) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InitCalls++
	if c.ShouldFail {
		return ErrCacheInitialization
	}
	return nil
}

// GetTree retrieves the forest from cache if available
func (c *MockCache) GetTree(ctx context.Context) ([]*models.CategoryResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetTreeCalls++

	if c.ShouldFail || c.tree == nil {
		return nil, false
	}
	return c.tree, true
}

// SetTree stores the forest in cache
func (c *MockCache) SetTree(ctx context.Context, tree []*models.CategoryResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetTreeCalls++

	if !c.ShouldFail {
		c.tree = tree
	}
}

// GetCategory retrieves a subtree from cache if available
func (c *MockCache) GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCategoryCalls++

	if c.ShouldFail {
		return nil, false
	}
	resp, ok := c.categories[id]
	return resp, ok
}

// SetCategory stores a subtree in cache
func (c *MockCache) SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCategoryCalls++

	if !c.ShouldFail {
		c.categories[id] = resp
	}
}

// InvalidateCache removes all cached data
func (c *MockCache) InvalidateCache(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InvalidateCalls++

	if c.ShouldFail {
		return ErrCacheInvalidation
	}
	c.tree = nil
	c.categories = make(map[int64]*models.CategoryResponse)
	return nil
}

// SetCacheTTL sets the cache time-to-live duration
func (c *MockCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetTTLCalls++

	if !c.ShouldFail {
		c.ttl = ttl
	}
}

// Reset resets all counters and state
func (c *MockCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetTreeCalls = 0
	c.SetTreeCalls = 0
	c.GetCategoryCalls = 0
	c.SetCategoryCalls = 0
	c.InvalidateCalls = 0
	c.SetTTLCalls = 0
	c.InitCalls = 0
	c.ShouldFail = false
	c.tree = nil
	c.categories = make(map[int64]*models.CategoryResponse)
}

// GetCallCounts returns the number of times the tree methods, InvalidateCache,
// SetCacheTTL and Initialize were called
func (c *MockCache) GetCallCounts() (getTree, setTree, invalidate, setTTL, init int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.GetTreeCalls, c.SetTreeCalls, c.InvalidateCalls, c.SetTTLCalls, c.InitCalls
}

// GetCategoryCallCounts returns the number of GetCategory and SetCategory calls
func (c *MockCache) GetCategoryCallCounts() (getCategory, setCategory int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.GetCategoryCalls, c.SetCategoryCalls
}

// SetShouldFail makes the mock cache fail all operations
func (c *MockCache) SetShouldFail(shouldFail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ShouldFail = shouldFail
}

var (
	// ErrCacheInitialization is returned when the mock cache is configured to fail
	ErrCacheInitialization = errors.New("mock cache initialization failed")
	// ErrCacheInvalidation is returned by InvalidateCache when the mock is configured to fail
	ErrCacheInvalidation = errors.New("mock cache invalidation failed")
)
