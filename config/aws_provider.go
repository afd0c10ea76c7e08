package config

import (
	"context"
	"fmt"
	"os"
)

// AWSConfigProvider reads settings from an AWS Secrets Manager secret and
// falls back to environment variables for keys the secret does not hold,
// such as PORT or CACHE_DRIVER.
type AWSConfigProvider struct {
	secretsProvider Provider
	envProvider     Provider
}

// NewAWSConfigProvider creates a provider for the secret named by AWS_SECRET_NAME
func NewAWSConfigProvider(ctx context.Context) (Provider, error) {
	secretName := os.Getenv("AWS_SECRET_NAME")
	if secretName == "" {
		return nil, fmt.Errorf("AWS_SECRET_NAME environment variable not set")
	}

	secretsProvider, err := NewAWSSecretsProvider(ctx, secretName)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS secrets provider: %w", err)
	}

	return NewLayeredProvider(secretsProvider, NewEnvProvider("")), nil
}

// NewLayeredProvider consults secrets first and env second
func NewLayeredProvider(secrets, env Provider) *AWSConfigProvider {
	return &AWSConfigProvider{
		secretsProvider: secrets,
		envProvider:     env,
	}
}

// GetEnvironment returns the current environment
func (p *AWSConfigProvider) GetEnvironment() Environment {
	return p.secretsProvider.GetEnvironment()
}

// GetString retrieves a string configuration value
func (p *AWSConfigProvider) GetString(ctx context.Context, key string) (string, error) {
	value, err := p.secretsProvider.GetString(ctx, key)
	if err == nil {
		return value, nil
	}
	if envValue, envErr := p.envProvider.GetString(ctx, key); envErr == nil {
		return envValue, nil
	}
	return "", err
}

// GetInt retrieves an integer configuration value
func (p *AWSConfigProvider) GetInt(ctx context.Context, key string) (int, error) {
	if value, err := p.secretsProvider.GetInt(ctx, key); err == nil {
		return value, nil
	}
	return p.envProvider.GetInt(ctx, key)
}

// GetBool retrieves a boolean configuration value
func (p *AWSConfigProvider) GetBool(ctx context.Context, key string) (bool, error) {
	if value, err := p.secretsProvider.GetBool(ctx, key); err == nil {
		return value, nil
	}
	return p.envProvider.GetBool(ctx, key)
}

// GetSecret retrieves a secret value. Secrets never fall back to the environment.
func (p *AWSConfigProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.secretsProvider.GetSecret(ctx, key)
}
