package repository

import (
	"context"
	"fmt"

	"github.com/ammiranda/category_service/config"
)

// Open creates and initializes the store selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.ServerConfig, provider config.Provider) (Repository, error) {
	var repo Repository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		repo = NewMemoryRepository()
	case config.StoreSQLite:
		repo = NewSQLiteRepository(cfg.SQLitePath)
	case config.StorePostgres:
		pg, err := NewPostgresRepository(ctx, provider)
		if err != nil {
			return nil, err
		}
		repo = pg
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.StoreDriver, err)
	}
	return repo, nil
}
