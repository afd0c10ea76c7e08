package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ammiranda/category_service/models"
)

type memoryEntry struct {
	tree     []*models.CategoryResponse
	category *models.CategoryResponse
	expiry   time.Time
}

// MemoryCache implements Provider using in-memory storage
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache creates a new in-memory cache provider
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		ttl:     defaultTTL,
		entries: make(map[string]memoryEntry),
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *MemoryCache) Initialize(ctx context.Context) error {
	return nil
}

func (c *MemoryCache) get(key string) (memoryEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiry) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (c *MemoryCache) set(key string, entry memoryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.expiry = time.Now().Add(c.ttl)
	c.entries[key] = entry
}

// GetTree retrieves the forest from cache if available
func (c *MemoryCache) GetTree(ctx context.Context) ([]*models.CategoryResponse, bool) {
	entry, ok := c.get(treeKey)
	if !ok {
		return nil, false
	}
	return entry.tree, true
}

// SetTree stores the forest in cache
func (c *MemoryCache) SetTree(ctx context.Context, tree []*models.CategoryResponse) {
	c.set(treeKey, memoryEntry{tree: tree})
}

// GetCategory retrieves a subtree from cache if available
func (c *MemoryCache) GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool) {
	entry, ok := c.get(categoryKey(id))
	if !ok {
		return nil, false
	}
	return entry.category, true
}

// SetCategory stores a subtree in cache
func (c *MemoryCache) SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse) {
	c.set(categoryKey(id), memoryEntry{category: resp})
}

// InvalidateCache removes all cached data
func (c *MemoryCache) InvalidateCache(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]memoryEntry)
	return nil
}

// SetCacheTTL sets the cache time-to-live duration
func (c *MemoryCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
	// Update all existing expiries
	now := time.Now()
	for key, entry := range c.entries {
		entry.expiry = now.Add(ttl)
		c.entries[key] = entry
	}
}
