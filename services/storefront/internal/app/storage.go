package app

import (
	"context"
	"fmt"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage/redisstore"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage/sqlitestore"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/config"
)

// openStorage opens the snapshot backend selected by cfg.StorageDriver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		s, err := sqlitestore.Open(ctx, sqlitestore.Config{Path: cfg.SQLitePath})
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil
	case config.StorageRedis:
		s, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.StorageTTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return s, nil
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageNone:
		return storage.None{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
