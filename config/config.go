package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Environment represents the application environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Provider defines the interface for configuration management
type Provider interface {
	// GetString retrieves a string configuration value
	GetString(ctx context.Context, key string) (string, error)
	// GetInt retrieves an integer configuration value
	GetInt(ctx context.Context, key string) (int, error)
	// GetBool retrieves a boolean configuration value
	GetBool(ctx context.Context, key string) (bool, error)
	// GetSecret retrieves a secret value
	GetSecret(ctx context.Context, key string) (string, error)
	// GetEnvironment returns the current environment
	GetEnvironment() Environment
}

// EnvProvider implements Provider using environment variables
type EnvProvider struct {
	prefix      string
	environment Environment
}

// NewEnvProvider creates a new environment-based configuration provider
func NewEnvProvider(prefix string) Provider {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = string(Development)
	}
	return &EnvProvider{
		prefix:      prefix,
		environment: Environment(env),
	}
}

// GetEnvironment returns the current environment
func (p *EnvProvider) GetEnvironment() Environment {
	return p.environment
}

// GetString retrieves a string configuration value from environment variables
func (p *EnvProvider) GetString(ctx context.Context, key string) (string, error) {
	value := os.Getenv(p.prefix + key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s%s not set", p.prefix, key)
	}
	return value, nil
}

// GetInt retrieves an integer configuration value from environment variables
func (p *EnvProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean configuration value from environment variables
func (p *EnvProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret value from environment variables
func (p *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}

// secretRefreshInterval bounds how long a fetched secret is served from memory
const secretRefreshInterval = 15 * time.Minute

// secretsManagerAPI is the subset of the Secrets Manager client the provider uses
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsProvider implements Provider using a JSON secret stored in AWS
// Secrets Manager. The secret is fetched once and refreshed after
// secretRefreshInterval.
type AWSSecretsProvider struct {
	client      secretsManagerAPI
	secretName  string
	mu          sync.RWMutex
	cache       map[string]string
	lastFetch   time.Time
	environment Environment
}

// NewAWSSecretsProvider creates a new AWS Secrets Manager based configuration provider
func NewAWSSecretsProvider(ctx context.Context, secretName string) (*AWSSecretsProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSSecretsProvider(secretsmanager.NewFromConfig(cfg), secretName), nil
}

func newAWSSecretsProvider(client secretsManagerAPI, secretName string) *AWSSecretsProvider {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = string(Development)
	}
	return &AWSSecretsProvider{
		client:      client,
		secretName:  secretName,
		cache:       make(map[string]string),
		environment: Environment(env),
	}
}

// GetEnvironment returns the current environment
func (p *AWSSecretsProvider) GetEnvironment() Environment {
	return p.environment
}

// GetString retrieves a string configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetString(ctx context.Context, key string) (string, error) {
	secrets, err := p.secrets(ctx)
	if err != nil {
		return "", err
	}
	value, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found", key)
	}
	return value, nil
}

// secrets returns the cached secret map, fetching it when stale
func (p *AWSSecretsProvider) secrets(ctx context.Context) (map[string]string, error) {
	p.mu.RLock()
	if len(p.cache) > 0 && time.Since(p.lastFetch) < secretRefreshInterval {
		cached := p.cache
		p.mu.RUnlock()
		return cached, nil
	}
	p.mu.RUnlock()

	secret, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}
	if secret.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", p.secretName)
	}

	var secretMap map[string]string
	if err := json.Unmarshal([]byte(*secret.SecretString), &secretMap); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	if err := validateSecretSchema(secretMap, p.environment); err != nil {
		return nil, fmt.Errorf("invalid secret schema: %w", err)
	}

	p.mu.Lock()
	p.cache = secretMap
	p.lastFetch = time.Now()
	p.mu.Unlock()
	return secretMap, nil
}

// GetInt retrieves an integer configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

var (
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?$`)
	dbNamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

	sslModes = map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}

	// productionPasswordRules apply on top of the minimum length
	productionPasswordRules = []struct {
		pattern *regexp.Regexp
		message string
	}{
		{regexp.MustCompile(`[A-Z]`), "password must contain an uppercase letter in production"},
		{regexp.MustCompile(`[a-z]`), "password must contain a lowercase letter in production"},
		{regexp.MustCompile(`[0-9]`), "password must contain a digit in production"},
		{regexp.MustCompile(`[^A-Za-z0-9]`), "password must contain a special character in production"},
	}
)

const minProductionPasswordLength = 12

// Validate checks c against the rules for env. Production additionally
// requires SSL, a non-loopback host and a strong password.
func (c *DatabaseConfig) Validate(env Environment) error {
	if c.Host == "" {
		return &ValidationError{Field: "Host", Message: "host cannot be empty"}
	}
	if net.ParseIP(c.Host) == nil && !hostnamePattern.MatchString(c.Host) {
		return &ValidationError{Field: "Host", Message: "invalid hostname or IP address"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "Port", Message: "port must be between 1 and 65535"}
	}
	if c.User == "" {
		return &ValidationError{Field: "User", Message: "user cannot be empty"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "Password", Message: "password cannot be empty"}
	}
	if !dbNamePattern.MatchString(c.DBName) {
		return &ValidationError{Field: "DBName", Message: "database name must start with a letter and contain only letters, digits and underscores"}
	}
	if !sslModes[c.SSLMode] {
		return &ValidationError{Field: "SSLMode", Message: fmt.Sprintf("invalid SSL mode %q", c.SSLMode)}
	}

	if env != Production {
		return nil
	}
	if strings.EqualFold(c.Host, "localhost") || isLoopback(c.Host) {
		return &ValidationError{Field: "Host", Message: "loopback hosts are not allowed in production"}
	}
	if c.SSLMode == "disable" {
		return &ValidationError{Field: "SSLMode", Message: "SSL cannot be disabled in production"}
	}
	if len(c.Password) < minProductionPasswordLength {
		return &ValidationError{Field: "Password", Message: fmt.Sprintf("password must be at least %d characters in production", minProductionPasswordLength)}
	}
	for _, rule := range productionPasswordRules {
		if !rule.pattern.MatchString(c.Password) {
			return &ValidationError{Field: "Password", Message: rule.message}
		}
	}
	return nil
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// databaseKeys lists the settings a secret must carry once it names DB_HOST
var databaseKeys = []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"}

// databaseConfigFromSecrets builds a DatabaseConfig from a decoded secret
func databaseConfigFromSecrets(secrets map[string]string) (*DatabaseConfig, error) {
	for _, key := range databaseKeys {
		if _, ok := secrets[key]; !ok {
			return nil, &ValidationError{Field: key, Message: "required secret key not found"}
		}
	}
	port, err := strconv.Atoi(secrets["DB_PORT"])
	if err != nil {
		return nil, &ValidationError{Field: "DB_PORT", Message: "port must be a valid number"}
	}
	return &DatabaseConfig{
		Host:     secrets["DB_HOST"],
		Port:     port,
		User:     secrets["DB_USER"],
		Password: secrets["DB_PASSWORD"],
		DBName:   secrets["DB_NAME"],
		SSLMode:  secrets["DB_SSLMODE"],
	}, nil
}

// validateSecretSchema rejects a secret whose database settings would fail
// DatabaseConfig.Validate. A secret without DB_HOST carries no database
// settings and is accepted as is.
func validateSecretSchema(secrets map[string]string, env Environment) error {
	if _, ok := secrets["DB_HOST"]; !ok {
		return nil
	}
	cfg, err := databaseConfigFromSecrets(secrets)
	if err != nil {
		return err
	}
	return cfg.Validate(env)
}

// GetDatabaseConfig reads the PostgreSQL settings from provider. DB_SSLMODE
// defaults to disable.
func GetDatabaseConfig(ctx context.Context, provider Provider) (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{SSLMode: "disable"}

	var err error
	settings := []struct {
		key string
		dst *string
		get func(context.Context, string) (string, error)
	}{
		{"DB_HOST", &cfg.Host, provider.GetString},
		{"DB_USER", &cfg.User, provider.GetString},
		{"DB_PASSWORD", &cfg.Password, provider.GetSecret},
		{"DB_NAME", &cfg.DBName, provider.GetString},
	}
	for _, s := range settings {
		if *s.dst, err = s.get(ctx, s.key); err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", s.key, err)
		}
	}
	if cfg.Port, err = provider.GetInt(ctx, "DB_PORT"); err != nil {
		return nil, fmt.Errorf("failed to get DB_PORT: %w", err)
	}
	if sslMode, err := provider.GetString(ctx, "DB_SSLMODE"); err == nil {
		cfg.SSLMode = sslMode
	}

	if err := cfg.Validate(provider.GetEnvironment()); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	return cfg, nil
}
