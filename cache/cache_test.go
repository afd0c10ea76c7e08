package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammiranda/category_service/config"
	"github.com/ammiranda/category_service/models"
)

func sampleTree() []*models.CategoryResponse {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	parentID := int64(1)
	root := &models.CategoryResponse{
		ID:        1,
		Name:      "Clothing",
		SortOrder: 1,
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
		Children:  make([]*models.CategoryResponse, 0),
	}
	root.AddChild(&models.CategoryResponse{
		ID:        2,
		Name:      "Tops",
		ParentID:  &parentID,
		Depth:     1,
		SortOrder: 1,
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
		Children:  make([]*models.CategoryResponse, 0),
	})
	return []*models.CategoryResponse{root}
}

func testCacheProvider(t *testing.T, provider Provider, ttl, wait time.Duration) {
	ctx := context.Background()
	tree := sampleTree()

	// Test SetTree and GetTree
	provider.SetTree(ctx, tree)
	cachedTree, found := provider.GetTree(ctx)
	require.True(t, found)
	require.Len(t, cachedTree, 1)
	assert.Equal(t, "Clothing", cachedTree[0].Name)
	require.Len(t, cachedTree[0].Children, 1)
	assert.Equal(t, "Tops", cachedTree[0].Children[0].Name)
	require.NotNil(t, cachedTree[0].Children[0].ParentID)
	assert.Equal(t, int64(1), *cachedTree[0].Children[0].ParentID)
	assert.True(t, tree[0].CreatedAt.Equal(cachedTree[0].CreatedAt))

	// Test SetCategory and GetCategory
	provider.SetCategory(ctx, 1, tree[0])
	cachedCategory, found := provider.GetCategory(ctx, 1)
	require.True(t, found)
	assert.Equal(t, int64(1), cachedCategory.ID)
	assert.Len(t, cachedCategory.Children, 1)
	_, found = provider.GetCategory(ctx, 2)
	assert.False(t, found)

	// Test cache invalidation drops every view
	require.NoError(t, provider.InvalidateCache(ctx))
	_, found = provider.GetTree(ctx)
	assert.False(t, found)
	_, found = provider.GetCategory(ctx, 1)
	assert.False(t, found)

	// Test cache expiration
	if ttl > 0 {
		provider.SetCacheTTL(ttl)
		provider.SetTree(ctx, tree)
		time.Sleep(wait)
		_, found = provider.GetTree(ctx)
		assert.False(t, found)
	}
}

func TestMemoryCache(t *testing.T) {
	memoryCache := NewMemoryCache()
	assert.NoError(t, memoryCache.Initialize(context.Background()))

	testCacheProvider(t, memoryCache, 50*time.Millisecond, 150*time.Millisecond)
}

func TestMemoryCacheSetTTLExtendsEntries(t *testing.T) {
	ctx := context.Background()
	memoryCache := NewMemoryCache()
	memoryCache.SetCacheTTL(50 * time.Millisecond)
	memoryCache.SetTree(ctx, sampleTree())

	memoryCache.SetCacheTTL(time.Minute)
	time.Sleep(100 * time.Millisecond)

	_, found := memoryCache.GetTree(ctx)
	assert.True(t, found)
}

func TestDynamoDBCache(t *testing.T) {
	mockClient := NewMockDynamoDBClient()
	dynamoCache := NewDynamoDBCacheWithClient(mockClient, "CategoryCache")
	assert.NoError(t, dynamoCache.Initialize(context.Background()))

	testCacheProvider(t, dynamoCache, time.Second, 2100*time.Millisecond)
}

func TestDynamoDBCacheInvalidatePaginates(t *testing.T) {
	ctx := context.Background()
	mockClient := NewMockDynamoDBClient()
	mockClient.PageSize = 2
	dynamoCache := NewDynamoDBCacheWithClient(mockClient, "CategoryCache")
	require.NoError(t, dynamoCache.Initialize(ctx))

	dynamoCache.SetTree(ctx, sampleTree())
	for id := int64(1); id <= 5; id++ {
		dynamoCache.SetCategory(ctx, id, sampleTree()[0])
	}
	require.Equal(t, 6, mockClient.Len("CategoryCache"))

	require.NoError(t, dynamoCache.InvalidateCache(ctx))

	assert.Equal(t, 0, mockClient.Len("CategoryCache"))
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	noop := NewNoopCache()
	require.NoError(t, noop.Initialize(ctx))

	noop.SetTree(ctx, sampleTree())
	_, found := noop.GetTree(ctx)
	assert.False(t, found)
	noop.SetCategory(ctx, 1, sampleTree()[0])
	_, found = noop.GetCategory(ctx, 1)
	assert.False(t, found)
	assert.NoError(t, noop.InvalidateCache(ctx))
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	var logs bytes.Buffer
	redisCache := NewRedisCacheWithClient(client, slog.New(slog.NewTextHandler(&logs, nil)))
	defer redisCache.Close()

	assert.Error(t, redisCache.Initialize(ctx))

	// reads degrade to misses
	redisCache.SetTree(ctx, sampleTree())
	_, found := redisCache.GetTree(ctx)
	assert.False(t, found)
	_, found = redisCache.GetCategory(ctx, 1)
	assert.False(t, found)
	assert.Error(t, redisCache.InvalidateCache(ctx))

	// failures go to the injected logger
	assert.Contains(t, logs.String(), "redis cache read failed")
	assert.Contains(t, logs.String(), "cache=redis")
}

func TestMockCache(t *testing.T) {
	ctx := context.Background()
	mockCache := NewMockCache()
	assert.NoError(t, mockCache.Initialize(ctx))

	// Test basic functionality
	testCacheProvider(t, mockCache, 0, 0)
	mockCache.SetCacheTTL(time.Minute)

	// Test call counts
	getTree, setTree, invalidate, setTTL, init := mockCache.GetCallCounts()
	assert.Greater(t, getTree, 0, "GetTree should have been called")
	assert.Greater(t, setTree, 0, "SetTree should have been called")
	assert.Greater(t, invalidate, 0, "InvalidateCache should have been called")
	assert.Equal(t, 1, setTTL, "SetCacheTTL should have been called once")
	assert.Equal(t, 1, init, "Initialize should have been called once")
	getCategory, setCategory := mockCache.GetCategoryCallCounts()
	assert.Equal(t, 3, getCategory)
	assert.Equal(t, 1, setCategory)

	// Test failure mode
	mockCache.Reset()
	mockCache.SetShouldFail(true)
	assert.Error(t, mockCache.Initialize(ctx), "Initialize should fail when ShouldFail is true")
	assert.Error(t, mockCache.InvalidateCache(ctx))
	tree, found := mockCache.GetTree(ctx)
	assert.Nil(t, tree, "GetTree should return nil when ShouldFail is true")
	assert.False(t, found, "GetTree should return false when ShouldFail is true")

	// Test reset functionality
	mockCache.Reset()
	getTree, setTree, invalidate, setTTL, init = mockCache.GetCallCounts()
	assert.Equal(t, 0, getTree, "GetTree calls should be reset")
	assert.Equal(t, 0, setTree, "SetTree calls should be reset")
	assert.Equal(t, 0, invalidate, "InvalidateCache calls should be reset")
	assert.Equal(t, 0, setTTL, "SetCacheTTL calls should be reset")
	assert.Equal(t, 0, init, "Initialize calls should be reset")
	assert.False(t, mockCache.ShouldFail, "ShouldFail should be reset")
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	provider, err := New(ctx, &config.CacheConfig{Driver: config.CacheMemory, TTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, provider)

	provider, err = New(ctx, &config.CacheConfig{Driver: config.CacheNone, TTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, provider)

	_, err = New(ctx, &config.CacheConfig{Driver: "memcached", TTL: time.Minute}, nil)
	assert.Error(t, err)
}
