package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ammiranda/category_service/cache"
	"github.com/ammiranda/category_service/config"
	"github.com/ammiranda/category_service/internal/lambda"
	"github.com/ammiranda/category_service/logging"
	"github.com/ammiranda/category_service/repository"
	"github.com/ammiranda/category_service/service"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

func main() {
	ctx := context.Background()

	// Lambda deployments read settings from Secrets Manager when a secret is named
	var cfgProvider config.Provider = config.NewEnvProvider("")
	if os.Getenv("AWS_SECRET_NAME") != "" {
		provider, err := config.NewAWSConfigProvider(ctx)
		if err != nil {
			slog.Error("failed to create config provider", "error", err)
			os.Exit(1)
		}
		cfgProvider = provider
	}

	serverCfg, err := config.GetServerConfig(ctx, cfgProvider)
	if err != nil {
		slog.Error("failed to load server config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(serverCfg.LogLevel, "json")
	slog.SetDefault(logger)

	// Initialize repository
	repo, err := repository.Open(ctx, serverCfg, cfgProvider)
	if err != nil {
		logger.Error("failed to open category store", "driver", serverCfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	cacheCfg, err := config.GetCacheConfig(ctx, cfgProvider)
	if err != nil {
		logger.Error("failed to load cache config", "error", err)
		os.Exit(1)
	}
	cacheProvider, err := cache.New(ctx, cacheCfg, logger)
	if err != nil {
		logger.Error("failed to initialize cache", "driver", cacheCfg.Driver, "error", err)
		os.Exit(1)
	}

	// Create handler with the category service
	handler := lambda.NewHandler(service.NewCategoryService(repo, cacheProvider, logger))

	// Start Lambda
	awslambda.Start(handler.Handle)
}
