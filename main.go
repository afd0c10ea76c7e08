package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ammiranda/category_service/cache"
	"github.com/ammiranda/category_service/config"
	"github.com/ammiranda/category_service/handlers"
	"github.com/ammiranda/category_service/logging"
	"github.com/ammiranda/category_service/repository"
	"github.com/ammiranda/category_service/service"

	"github.com/gin-gonic/gin"
)

// configProvider reads from AWS Secrets Manager when AWS_SECRET_NAME is set
// and from the environment otherwise
func configProvider(ctx context.Context) (config.Provider, error) {
	if os.Getenv("AWS_SECRET_NAME") != "" {
		return config.NewAWSConfigProvider(ctx)
	}
	return config.NewEnvProvider(""), nil
}

func main() {
	// Create context
	ctx := context.Background()

	// Initialize config provider
	cfgProvider, err := configProvider(ctx)
	if err != nil {
		slog.Error("failed to create config provider", "error", err)
		os.Exit(1)
	}

	serverCfg, err := config.GetServerConfig(ctx, cfgProvider)
	if err != nil {
		slog.Error("failed to load server config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(serverCfg.LogLevel, serverCfg.LogFormat)
	slog.SetDefault(logger)
	if cfgProvider.GetEnvironment() != config.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize repository
	repo, err := repository.Open(ctx, serverCfg, cfgProvider)
	if err != nil {
		logger.Error("failed to open category store", "driver", serverCfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer repo.Cleanup(ctx)

	// Initialize cache
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

	svc := service.NewCategoryService(repo, cacheProvider, logger)
	router := handlers.NewRouter(svc, logger)

	srv := &http.Server{
		Addr:         serverCfg.Addr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server starting",
			"addr", serverCfg.Addr(),
			"store", serverCfg.StoreDriver,
			"cache", cacheCfg.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped gracefully")
}
