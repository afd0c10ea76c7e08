package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ammiranda/category_service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI defines the interface for DynamoDB operations
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// CacheItem is one cached view stored under its key
type CacheItem struct {
	Key       string                     `dynamodbav:"key"`
	Tree      []*models.CategoryResponse `dynamodbav:"tree,omitempty"`
	Category  *models.CategoryResponse   `dynamodbav:"category,omitempty"`
	Timestamp int64                      `dynamodbav:"timestamp"`
	TTL       int64                      `dynamodbav:"ttl"`
}

// DynamoDBCache implements Provider using a DynamoDB table dedicated to the cache
type DynamoDBCache struct {
	client    DynamoDBAPI
	tableName string
	mu        sync.RWMutex
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewDynamoDBCache creates a new DynamoDB cache provider using the default AWS config
func NewDynamoDBCache(ctx context.Context, tableName string) (*DynamoDBCache, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewDynamoDBCacheWithClient(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewDynamoDBCacheWithClient creates a new DynamoDB cache provider with a custom client
func NewDynamoDBCacheWithClient(client DynamoDBAPI, tableName string) *DynamoDBCache {
	return &DynamoDBCache{
		client:    client,
		tableName: tableName,
		cacheTTL:  defaultTTL,
		logger:    slog.Default(),
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (c *DynamoDBCache) Initialize(ctx context.Context) error {
	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("key"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("key"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create cache table %s: %w", c.tableName, err)
	}
	return nil
}

func (c *DynamoDBCache) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}

func (c *DynamoDBCache) get(ctx context.Context, key string) (*CacheItem, bool) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(key),
	})
	if err != nil {
		c.logger.Warn("dynamodb cache read failed", "key", key, "error", err)
		return nil, false
	}
	if result.Item == nil {
		return nil, false
	}

	var item CacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		c.logger.Warn("dynamodb cache entry corrupt", "key", key, "error", err)
		return nil, false
	}

	if time.Now().Unix() > item.TTL {
		// Cache expired, delete it
		if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(c.tableName),
			Key:       c.itemKey(key),
		}); err != nil {
			c.logger.Warn("error deleting expired cache item", "key", key, "error", err)
		}
		return nil, false
	}
	return &item, true
}

func (c *DynamoDBCache) put(ctx context.Context, item CacheItem) {
	c.mu.RLock()
	ttl := c.cacheTTL
	c.mu.RUnlock()

	now := time.Now()
	item.Timestamp = now.Unix()
	item.TTL = now.Add(ttl).Unix()

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		c.logger.Warn("error marshalling cache item", "key", item.Key, "error", err)
		return
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	}); err != nil {
		c.logger.Warn("error storing cache item", "key", item.Key, "error", err)
	}
}

// GetTree retrieves the forest from DynamoDB cache if available
func (c *DynamoDBCache) GetTree(ctx context.Context) ([]*models.CategoryResponse, bool) {
	item, ok := c.get(ctx, treeKey)
	if !ok {
		return nil, false
	}
	if item.Tree == nil {
		item.Tree = make([]*models.CategoryResponse, 0)
	}
	return item.Tree, true
}

// SetTree stores the forest in DynamoDB cache
func (c *DynamoDBCache) SetTree(ctx context.Context, tree []*models.CategoryResponse) {
	c.put(ctx, CacheItem{Key: treeKey, Tree: tree})
}

// GetCategory retrieves a subtree from DynamoDB cache if available
func (c *DynamoDBCache) GetCategory(ctx context.Context, id int64) (*models.CategoryResponse, bool) {
	item, ok := c.get(ctx, categoryKey(id))
	if !ok || item.Category == nil {
		return nil, false
	}
	return item.Category, true
}

// SetCategory stores a subtree in DynamoDB cache
func (c *DynamoDBCache) SetCategory(ctx context.Context, id int64, resp *models.CategoryResponse) {
	c.put(ctx, CacheItem{Key: categoryKey(id), Category: resp})
}

// InvalidateCache deletes every item in the cache table
func (c *DynamoDBCache) InvalidateCache(ctx context.Context) error {
	var startKey map[string]types.AttributeValue
	for {
		out, err := c.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(c.tableName),
			ProjectionExpression:     aws.String("#k"),
			ExpressionAttributeNames: map[string]string{"#k": "key"},
			ExclusiveStartKey:        startKey,
		})
		if err != nil {
			return fmt.Errorf("error scanning cache table: %w", err)
		}

		for _, item := range out.Items {
			if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(c.tableName),
				Key:       map[string]types.AttributeValue{"key": item["key"]},
			}); err != nil {
				return fmt.Errorf("error deleting cache item: %w", err)
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *DynamoDBCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheTTL = ttl
}
