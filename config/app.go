package config

import (
	"context"
	"fmt"
	"time"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Cache drivers
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheDynamoDB = "dynamodb"
	CacheNone     = "none"
)

// ServerConfig holds the HTTP server, store selection and logging settings
type ServerConfig struct {
	Port        int
	StoreDriver string
	SQLitePath  string
	LogLevel    string
	LogFormat   string
}

// Validate checks if the server configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "PORT", Message: "port must be between 1 and 65535"}
	}
	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return &ValidationError{Field: "STORE_DRIVER", Message: fmt.Sprintf("unknown store driver %q", c.StoreDriver)}
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return &ValidationError{Field: "LOG_FORMAT", Message: "log format must be json or text"}
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetServerConfig reads the server configuration, falling back to defaults
// for unset keys. Logs are JSON outside development.
func GetServerConfig(ctx context.Context, provider Provider) (*ServerConfig, error) {
	port, err := intOrDefault(ctx, provider, "PORT", 8080)
	if err != nil {
		return nil, err
	}

	format := "text"
	if provider.GetEnvironment() != Development {
		format = "json"
	}

	cfg := &ServerConfig{
		Port:        port,
		StoreDriver: stringOrDefault(ctx, provider, "STORE_DRIVER", StoreMemory),
		SQLitePath:  stringOrDefault(ctx, provider, "SQLITE_PATH", ""),
		LogLevel:    stringOrDefault(ctx, provider, "LOG_LEVEL", "info"),
		LogFormat:   stringOrDefault(ctx, provider, "LOG_FORMAT", format),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return cfg, nil
}

// CacheConfig selects and configures the read cache
type CacheConfig struct {
	Driver        string
	TTL           time.Duration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	DynamoDBTable string
}

// Validate checks if the cache configuration is valid
func (c *CacheConfig) Validate() error {
	switch c.Driver {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisHost == "" {
			return &ValidationError{Field: "REDIS_HOST", Message: "host cannot be empty"}
		}
		if c.RedisPort <= 0 || c.RedisPort > 65535 {
			return &ValidationError{Field: "REDIS_PORT", Message: "port must be between 1 and 65535"}
		}
	case CacheDynamoDB:
		if c.DynamoDBTable == "" {
			return &ValidationError{Field: "DYNAMODB_CACHE_TABLE", Message: "table name cannot be empty"}
		}
	default:
		return &ValidationError{Field: "CACHE_DRIVER", Message: fmt.Sprintf("unknown cache driver %q", c.Driver)}
	}
	if c.TTL <= 0 {
		return &ValidationError{Field: "CACHE_TTL", Message: "ttl must be positive"}
	}
	return nil
}

// RedisAddr returns host:port of the Redis server
func (c *CacheConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// GetCacheConfig reads the cache configuration, falling back to defaults for
// unset keys. Setting REDIS_HOST alone selects the redis driver.
func GetCacheConfig(ctx context.Context, provider Provider) (*CacheConfig, error) {
	ttl, err := durationOrDefault(ctx, provider, "CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	redisPort, err := intOrDefault(ctx, provider, "REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}

	redisHost := stringOrDefault(ctx, provider, "REDIS_HOST", "")
	driver := CacheMemory
	if redisHost != "" {
		driver = CacheRedis
	}
	if redisHost == "" {
		redisHost = "localhost"
	}

	password, err := provider.GetSecret(ctx, "REDIS_PASSWORD")
	if err != nil {
		password = ""
	}

	cfg := &CacheConfig{
		Driver:        stringOrDefault(ctx, provider, "CACHE_DRIVER", driver),
		TTL:           ttl,
		RedisHost:     redisHost,
		RedisPort:     redisPort,
		RedisPassword: password,
		DynamoDBTable: stringOrDefault(ctx, provider, "DYNAMODB_CACHE_TABLE", "CategoryCache"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}
	return cfg, nil
}

// GetDuration retrieves a duration value such as "30s" or "5m"
func GetDuration(ctx context.Context, provider Provider, key string) (time.Duration, error) {
	value, err := provider.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "invalid duration"}
	}
	return d, nil
}

func stringOrDefault(ctx context.Context, provider Provider, key, def string) string {
	value, err := provider.GetString(ctx, key)
	if err != nil || value == "" {
		return def
	}
	return value
}

// intOrDefault only falls back when the key is unset; a malformed value is an error
func intOrDefault(ctx context.Context, provider Provider, key string, def int) (int, error) {
	if _, err := provider.GetString(ctx, key); err != nil {
		return def, nil
	}
	value, err := provider.GetInt(ctx, key)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: "must be a valid number"}
	}
	return value, nil
}

func durationOrDefault(ctx context.Context, provider Provider, key string, def time.Duration) (time.Duration, error) {
	if _, err := provider.GetString(ctx, key); err != nil {
		return def, nil
	}
	return GetDuration(ctx, provider, key)
}
