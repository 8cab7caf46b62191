// Package bootstrap wires the process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups upserts the built-in groups after connecting.
	SeedGroups bool
}

// InitRuntime connects to the database and, when REDIS_URL is set, to Redis.
// An unreachable Redis is logged and yields a nil client so callers fall
// back to in-memory stores.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var client *redis.Client
	if cfg.RedisURL != "" {
		client, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("Redis unavailable, using in-memory stores", slog.String("error", err.Error()))
			client = nil
		}
	}

	if opts.SeedGroups {
		fixtures, err := seed.DefaultGroups()
		if err != nil {
			return nil, nil, err
		}
		if _, err := seed.Groups(ctx, db, fixtures); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
	}

	return db, client, nil
}
