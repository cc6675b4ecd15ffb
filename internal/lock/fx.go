package lock

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tally/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn("redis not configured, resource locks are process-local")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

var Module = fx.Module("lock",
	fx.Provide(newRedisClient),
	fx.Provide(NewLocker),
)
