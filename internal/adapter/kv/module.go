package kv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/dealerflow/internal/config"
	"github.com/polkiloo/dealerflow/internal/usecase"
)

// Module wires the redis client, the cache and the transition locker.
var Module = fx.Options(
	fx.Provide(
		newClient,
		func(client redis.UniversalClient, cfg *config.Config) usecase.Cache {
			return NewCache(client, cfg.CacheTTL)
		},
		func(client redis.UniversalClient, cfg *config.Config) usecase.Locker {
			return NewLocker(redislock.New(client), cfg.LockTTL)
		},
	),
	fx.Invoke(registerLifecycle),
)

func newClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
	})
}

func registerLifecycle(lc fx.Lifecycle, client redis.UniversalClient, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			logger.Info("redis connected")
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
