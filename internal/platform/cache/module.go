// Package cache wires the configured cache backend into the fx graph.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	pkgcache "github.com/fatflowers/licensing/pkg/cache"
	"github.com/fatflowers/licensing/pkg/config"
)

// NewRedisClient returns nil unless the redis driver is configured.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (redis.UniversalClient, error) {
	if cfg.Cache.Driver != config.CacheDriverRedis {
		return nil, nil
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Cache.Redis.Addr},
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to reach redis at %s: %w", cfg.Cache.Redis.Addr, err)
			}
			log.Infow("redis cache connected", "addr", cfg.Cache.Redis.Addr)
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newCache[V any](cfg *config.Config, client redis.UniversalClient, log *zap.SugaredLogger) pkgcache.Cache[V] {
	if client != nil {
		return pkgcache.NewRedis[V](client, cfg.Cache.Redis.Prefix, log)
	}
	return pkgcache.NewMemory[V](cfg.Cache.Size)
}

func NewCounts(cfg *config.Config, client redis.UniversalClient, log *zap.SugaredLogger) pkgcache.Cache[int64] {
	return newCache[int64](cfg, client, log)
}

func NewStrings(cfg *config.Config, client redis.UniversalClient, log *zap.SugaredLogger) pkgcache.Cache[string] {
	return newCache[string](cfg, client, log)
}

var Module = fx.Options(
	fx.Provide(NewRedisClient, NewCounts, NewStrings),
)
